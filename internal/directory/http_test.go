package directory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// newTestClient starts a server with the given handler and returns a client for it
func newTestClient(t *testing.T, h http.HandlerFunc) (*HTTPClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := DefaultHTTPConfig()
	cfg.Token = "secret"
	return NewHTTPClient(srv.Client(), cfg, zerolog.Nop()), srv
}

func TestHTTPClientListHubs(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/_api/HubSites" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if got := r.Header.Get("Accept"); got != acceptHeader {
			t.Errorf("expected accept %q, got %q", acceptHeader, got)
		}
		w.Write([]byte(`{"value":[
			{"ID":"h1","SiteId":"s1","Title":"HR","SiteUrl":"https://x/hr","Description":"People"},
			{"ID":"","SiteId":"s2","Title":"","SiteUrl":"https://x/it"}
		]}`))
	})

	hubs, err := client.ListHubs(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hubs) != 2 {
		t.Fatalf("expected 2 hubs, got %d", len(hubs))
	}

	first := hubs[0].Candidate()
	if first.ID != "h1" || first.DepartmentTag != "h1" || first.Description != "People" {
		t.Errorf("unexpected candidate %+v", first)
	}
	second := hubs[1].Candidate()
	if second.ID != "s2" {
		t.Errorf("expected id to fall back to site id, got %q", second.ID)
	}
	if second.Title != "Untitled Hub Site" {
		t.Errorf("expected placeholder hub title, got %q", second.Title)
	}
}

func TestHTTPClientListHubsVerbose(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"d":{"results":[{"ID":"h1","SiteUrl":"https://x/hr"}]}}`))
	})

	hubs, err := client.ListHubs(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hubs) != 1 || hubs[0].ID != "h1" {
		t.Errorf("unexpected hubs %+v", hubs)
	}
}

func TestHTTPClientFetchFailed(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "access denied", http.StatusForbidden)
	})

	_, err := client.ListHubs(context.Background(), srv.URL)
	var ff *FetchFailed
	if !errors.As(err, &ff) {
		t.Fatalf("expected *FetchFailed, got %v", err)
	}
	if ff.Status != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", ff.Status)
	}
	if !strings.Contains(ff.Message, "access denied") {
		t.Errorf("expected body in message, got %q", ff.Message)
	}
}

func TestHTTPClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	client := NewHTTPClient(nil, DefaultHTTPConfig(), zerolog.Nop())
	_, err := client.GetWebIdentity(context.Background(), addr)
	var ff *FetchFailed
	if !errors.As(err, &ff) {
		t.Fatalf("expected *FetchFailed, got %v", err)
	}
	if ff.Status != 0 {
		t.Errorf("expected status 0 for transport failure, got %d", ff.Status)
	}
}

func TestHTTPClientRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultHTTPConfig()
	cfg.RequestTimeout = 50 * time.Millisecond
	client := NewHTTPClient(srv.Client(), cfg, zerolog.Nop())

	_, err := client.GetWebIdentity(context.Background(), srv.URL)
	var ff *FetchFailed
	if !errors.As(err, &ff) {
		t.Fatalf("expected *FetchFailed, got %v", err)
	}
	if ff.Message != "request timed out" {
		t.Errorf("expected timeout message, got %q", ff.Message)
	}
}

func TestHTTPClientGetWebIdentity(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sites/hr/_api/web" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("$select"); got != "Id,HubSiteId" {
			t.Errorf("unexpected $select %q", got)
		}
		w.Write([]byte(`{"Id":"a","HubSiteId":"b"}`))
	})

	id, err := client.GetWebIdentity(context.Background(), srv.URL+"/sites/hr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.SelfID != "a" || id.HubPointerID != "b" {
		t.Errorf("unexpected identity %+v", id)
	}
}

func TestHTTPClientGetWebIdentityMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"missing id", `{"HubSiteId":"b"}`},
		{"wrong type", `{"Id":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			_, err := client.GetWebIdentity(context.Background(), srv.URL)
			var df *DecodeFailed
			if !errors.As(err, &df) {
				t.Errorf("expected *DecodeFailed, got %v", err)
			}
		})
	}
}

func TestHTTPClientDeclaredAssociations(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sites/hr/_api/web/HubSiteData" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"value":"{\"AssociatedSites\":[{\"SiteId\":\"1\",\"Title\":\"Payroll\",\"SiteUrl\":\"https://x/payroll\"}]}"}`))
	})

	encoded, err := client.GetDeclaredAssociations(context.Background(), srv.URL+"/sites/hr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sites, err := encoded.Decode()
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(sites) != 1 || sites[0].SiteURL != "https://x/payroll" || sites[0].Title != "Payroll" {
		t.Errorf("unexpected sites %+v", sites)
	}
}

func TestEncodedHubDataDecode(t *testing.T) {
	t.Run("empty payload", func(t *testing.T) {
		sites, err := EncodedHubData("").Decode()
		if err != nil || len(sites) != 0 {
			t.Errorf("expected no sites and no error, got %v, %v", sites, err)
		}
	})

	t.Run("no associated sites key", func(t *testing.T) {
		sites, err := EncodedHubData(`{"themeKey":"x"}`).Decode()
		if err != nil || sites == nil || len(sites) != 0 {
			t.Errorf("expected empty sites, got %v, %v", sites, err)
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := EncodedHubData(`{"AssociatedSites":`).Decode()
		var df *DecodeFailed
		if !errors.As(err, &df) {
			t.Errorf("expected *DecodeFailed, got %v", err)
		}
	})
}

func TestHTTPClientSearchByAffiliation(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/_api/search/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		want := `'DepartmentId:"h1" AND contentclass:STS_Site AND -Path:"https://x/hr"'`
		if got := q.Get("querytext"); got != want {
			t.Errorf("expected querytext %s, got %s", want, got)
		}
		if got := q.Get("rowlimit"); got != "500" {
			t.Errorf("expected rowlimit 500, got %s", got)
		}
		if got := q.Get("selectproperties"); got != "'Title,Path,SiteId'" {
			t.Errorf("unexpected selectproperties %s", got)
		}
		w.Write([]byte(`{"PrimaryQueryResult":{"RelevantResults":{"Table":{"Rows":[
			{"Cells":[{"Key":"Title","Value":"Payroll"},{"Key":"Path","Value":"https://x/payroll"},{"Key":"SiteId","Value":null}]}
		]}}}}`))
	})

	rows, err := client.SearchByAffiliation(context.Background(), SearchQuery{
		Scope:      srv.URL,
		HubID:      "h1",
		ExcludeURL: "https://x/hr",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Value("Path") != "https://x/payroll" || rows[0].Value("SiteId") != "" {
		t.Errorf("unexpected row %+v", rows[0])
	}
}

func TestDecodeSearchRowsShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		rows int
	}{
		{"no results", `{"PrimaryQueryResult":null}`, 0},
		{"empty table", `{"PrimaryQueryResult":{"RelevantResults":{"Table":{"Rows":[]}}}}`, 0},
		{"verbose envelope", `{"d":{"query":{"PrimaryQueryResult":{"RelevantResults":{"Table":{"Rows":{"results":[{"Cells":{"results":[{"Key":"Path","Value":"https://x/a"}]}}]}}}}}}}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := decodeSearchRows([]byte(tt.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rows) != tt.rows {
				t.Errorf("expected %d rows, got %d", tt.rows, len(rows))
			}
		})
	}
}

func TestSearchURLRowLimit(t *testing.T) {
	raw := SearchURL(SearchQuery{Scope: "https://x/", HubID: "h", ExcludeURL: "https://x/h", RowLimit: 25})
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Path != "/_api/search/query" {
		t.Errorf("unexpected path %s", u.Path)
	}
	if got := u.Query().Get("rowlimit"); got != "25" {
		t.Errorf("expected rowlimit 25, got %s", got)
	}
}

func TestStatusMessageKeepsRunesWhole(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusBadGateway}
	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"short", "upstream down", "upstream down"},
		{"two-byte rune straddles limit", strings.Repeat("a", 199) + "é tail", strings.Repeat("a", 199)},
		{"cjk body", strings.Repeat("目", 100), strings.Repeat("目", 66)},
		{"exact fit", strings.Repeat("a", 198) + "é", strings.Repeat("a", 198) + "é"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := statusMessage(resp, []byte(tt.body))
			if !utf8.ValidString(got) {
				t.Fatalf("message is not valid UTF-8: %q", got)
			}
			want := "Bad Gateway: " + tt.detail
			if got != want {
				t.Errorf("statusMessage() = %q, want %q", got, want)
			}
		})
	}
}
