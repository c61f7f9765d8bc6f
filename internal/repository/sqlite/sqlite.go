// Package sqlite stores directory snapshots in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	_ "modernc.org/sqlite"

	"sitedirectory/internal/directory"
	"sitedirectory/internal/domain"
	"sitedirectory/internal/repository"
)

const siteContentClass = "STS_Site"

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Repository = (*Repository)(nil)

// New opens (creating if needed) a snapshot database
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

// Close closes the database
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS hubs (
		position INTEGER PRIMARY KEY,
		id TEXT,
		site_id TEXT,
		title TEXT,
		site_url TEXT,
		description TEXT
	);

	CREATE TABLE IF NOT EXISTS webs (
		url_key TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		id TEXT NOT NULL,
		hub_site_id TEXT
	);

	CREATE TABLE IF NOT EXISTS hub_site_data (
		url_key TEXT PRIMARY KEY,
		payload TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS search_index (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT,
		path_key TEXT,
		site_id TEXT,
		title TEXT,
		department_id TEXT,
		content_class TEXT NOT NULL DEFAULT 'STS_Site'
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_search_department ON search_index(department_id COLLATE NOCASE);
	`

	_, err := r.db.Exec(schema)
	return err
}

// ListHubs implements directory.Client
func (r *Repository) ListHubs(ctx context.Context, scope string) ([]directory.HubEntry, error) {
	const op = "list hubs"

	stored, err := r.metadata(ctx, "scope")
	if err != nil {
		return nil, queryFailed(op, scope, err)
	}
	if stored != "" && scope != "" && !domain.SameURL(strings.TrimRight(stored, "/"), strings.TrimRight(scope, "/")) {
		return nil, &directory.FetchFailed{Op: op, URL: scope, Status: http.StatusNotFound, Message: "scope not in snapshot " + stored}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, site_id, title, site_url, description
		FROM hubs
		ORDER BY position
	`)
	if err != nil {
		return nil, queryFailed(op, scope, err)
	}
	defer rows.Close()

	hubs := make([]directory.HubEntry, 0)
	for rows.Next() {
		var id, siteID, title, siteURL, description sql.NullString
		if err := rows.Scan(&id, &siteID, &title, &siteURL, &description); err != nil {
			return nil, queryFailed(op, scope, err)
		}
		hubs = append(hubs, directory.HubEntry{
			ID:          nullToString(id),
			SiteID:      nullToString(siteID),
			Title:       nullToString(title),
			SiteURL:     nullToString(siteURL),
			Description: nullToString(description),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailed(op, scope, err)
	}
	return hubs, nil
}

// GetWebIdentity implements directory.Client
func (r *Repository) GetWebIdentity(ctx context.Context, siteURL string) (domain.WebIdentity, error) {
	const op = "web identity"

	var id string
	var hubSiteID sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, hub_site_id FROM webs WHERE url_key = ?`, urlKey(siteURL),
	).Scan(&id, &hubSiteID)
	if err == sql.ErrNoRows {
		return domain.WebIdentity{}, notFound(op, siteURL)
	}
	if err != nil {
		return domain.WebIdentity{}, queryFailed(op, siteURL, err)
	}
	return domain.WebIdentity{SelfID: id, HubPointerID: nullToString(hubSiteID)}, nil
}

// GetDeclaredAssociations implements directory.Client
func (r *Repository) GetDeclaredAssociations(ctx context.Context, hubURL string) (directory.EncodedHubData, error) {
	const op = "hub site data"

	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM hub_site_data WHERE url_key = ?`, urlKey(hubURL),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return "", notFound(op, hubURL)
	}
	if err != nil {
		return "", queryFailed(op, hubURL, err)
	}
	return directory.EncodedHubData(payload), nil
}

// SearchByAffiliation implements directory.Client.
// Rows carry only the cells that are set, like the live index.
func (r *Repository) SearchByAffiliation(ctx context.Context, q directory.SearchQuery) ([]domain.SearchRow, error) {
	const op = "search"

	rows, err := r.db.QueryContext(ctx, `
		SELECT title, path, site_id
		FROM search_index
		WHERE department_id = ? COLLATE NOCASE
		  AND content_class = ?
		  AND COALESCE(path_key, '') != ?
		ORDER BY id
		LIMIT ?
	`, q.HubID, siteContentClass, urlKey(q.ExcludeURL), q.Limit())
	if err != nil {
		return nil, queryFailed(op, q.Scope, err)
	}
	defer rows.Close()

	out := make([]domain.SearchRow, 0)
	for rows.Next() {
		var title, path, siteID sql.NullString
		if err := rows.Scan(&title, &path, &siteID); err != nil {
			return nil, queryFailed(op, q.Scope, err)
		}
		row := domain.SearchRow{}
		row.Cells = appendCell(row.Cells, "Title", title)
		row.Cells = appendCell(row.Cells, "Path", path)
		row.Cells = appendCell(row.Cells, "SiteId", siteID)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailed(op, q.Scope, err)
	}
	return out, nil
}

// Import replaces the snapshot with snap in a single transaction
func (r *Repository) Import(ctx context.Context, snap *repository.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"hubs", "webs", "hub_site_data", "search_index"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, h := range snap.Hubs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO hubs (position, id, site_id, title, site_url, description)
			VALUES (?, ?, ?, ?, ?, ?)
		`, i, stringToNull(h.ID), stringToNull(h.SiteID), stringToNull(h.Title),
			stringToNull(h.SiteURL), stringToNull(h.Description))
		if err != nil {
			return fmt.Errorf("failed to insert hub %s: %w", h.SiteURL, err)
		}
	}

	for _, w := range snap.Webs {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO webs (url_key, url, id, hub_site_id)
			VALUES (?, ?, ?, ?)
		`, urlKey(w.URL), w.URL, w.ID, stringToNull(w.HubSiteID))
		if err != nil {
			return fmt.Errorf("failed to insert web %s: %w", w.URL, err)
		}
	}

	for _, d := range snap.HubData {
		payload, err := encodeHubData(d)
		if err != nil {
			return fmt.Errorf("failed to encode hub data for %s: %w", d.HubURL, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO hub_site_data (url_key, payload)
			VALUES (?, ?)
		`, urlKey(d.HubURL), payload)
		if err != nil {
			return fmt.Errorf("failed to insert hub data for %s: %w", d.HubURL, err)
		}
	}

	for _, s := range snap.Index {
		class := s.ContentClass
		if class == "" {
			class = siteContentClass
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO search_index (path, path_key, site_id, title, department_id, content_class)
			VALUES (?, ?, ?, ?, ?, ?)
		`, stringToNull(s.Path), stringToNull(urlKey(s.Path)), stringToNull(s.SiteID),
			stringToNull(s.Title), s.DepartmentID, class)
		if err != nil {
			return fmt.Errorf("failed to insert index entry %s: %w", s.Path, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO metadata (key, value, updated_at) VALUES ('scope', ?, CURRENT_TIMESTAMP)
	`, snap.Scope); err != nil {
		return fmt.Errorf("failed to store scope: %w", err)
	}

	return tx.Commit()
}

func (r *Repository) metadata(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func encodeHubData(d repository.HubData) (string, error) {
	if d.Raw != "" {
		return d.Raw, nil
	}
	sites := d.Sites
	if sites == nil {
		sites = []domain.DeclaredSite{}
	}
	data, err := json.Marshal(struct {
		AssociatedSites []domain.DeclaredSite `json:"AssociatedSites"`
	}{sites})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
