package sqlite

import (
	"database/sql"
	"net/http"

	"sitedirectory/internal/directory"
	"sitedirectory/internal/domain"
)

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// urlKey is the lookup key for a site URL; trailing slashes are ignored
func urlKey(u string) string {
	key := domain.NormalizeURL(u)
	for len(key) > 1 && key[len(key)-1] == '/' {
		key = key[:len(key)-1]
	}
	return key
}

// appendCell adds a search cell when the column is set
func appendCell(cells []domain.SearchCell, key string, ns sql.NullString) []domain.SearchCell {
	if !ns.Valid || ns.String == "" {
		return cells
	}
	return append(cells, domain.SearchCell{Key: key, Value: ns.String})
}

func notFound(op, target string) error {
	return &directory.FetchFailed{Op: op, URL: target, Status: http.StatusNotFound, Message: http.StatusText(http.StatusNotFound)}
}

func queryFailed(op, target string, err error) error {
	return &directory.FetchFailed{Op: op, URL: target, Message: "snapshot query: " + err.Error(), Err: err}
}
