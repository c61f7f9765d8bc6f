package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"path/filepath"
	"reflect"
	"testing"

	"sitedirectory/internal/directory"
	"sitedirectory/internal/domain"
	"sitedirectory/internal/repository"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// assertStatus fails the test unless err is a FetchFailed with the given status
func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	var ff *directory.FetchFailed
	if !errors.As(err, &ff) {
		t.Fatalf("expected *directory.FetchFailed, got %v", err)
	}
	if ff.Status != status {
		t.Fatalf("expected status %d, got %d", status, ff.Status)
	}
}

func testSnapshot() *repository.Snapshot {
	return &repository.Snapshot{
		Scope: "https://contoso.example",
		Hubs: []directory.HubEntry{
			{ID: "h1", SiteID: "w1", Title: "HR", SiteURL: "https://contoso.example/sites/hr", Description: "People"},
			{ID: "h2", SiteID: "w2", Title: "", SiteURL: "https://contoso.example/sites/it"},
		},
		Webs: []repository.Web{
			{URL: "https://contoso.example/sites/hr", ID: "w1", HubSiteID: "w1"},
			{URL: "https://contoso.example/sites/it", ID: "w2"},
		},
		HubData: []repository.HubData{
			{HubURL: "https://contoso.example/sites/hr", Sites: []domain.DeclaredSite{
				{SiteID: "p1", Title: "Payroll", SiteURL: "https://contoso.example/sites/payroll"},
			}},
			{HubURL: "https://contoso.example/sites/it", Raw: "{not json"},
		},
		Index: []repository.IndexedSite{
			{Path: "https://contoso.example/sites/payroll", SiteID: "p1", Title: "Payroll", DepartmentID: "h1"},
			{Path: "https://contoso.example/sites/benefits", DepartmentID: "H1"},
			{Path: "https://contoso.example/sites/hr", SiteID: "w1", Title: "HR", DepartmentID: "h1"},
			{Path: "https://contoso.example/sites/hr/Shared Documents/a.docx", DepartmentID: "h1", ContentClass: "STS_ListItem_DocumentLibrary"},
			{Path: "https://contoso.example/sites/helpdesk", DepartmentID: "h2"},
		},
	}
}

func importTestSnapshot(t *testing.T, repo *Repository) {
	t.Helper()
	assertNoError(t, repo.Import(context.Background(), testSnapshot()))
}

// ============================================================================
// Helper Function Tests
// ============================================================================

func TestNullToString(t *testing.T) {
	tests := []struct {
		name     string
		input    sql.NullString
		expected string
	}{
		{"valid string", sql.NullString{String: "test", Valid: true}, "test"},
		{"invalid string", sql.NullString{String: "test", Valid: false}, ""},
		{"empty valid string", sql.NullString{String: "", Valid: true}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertEqual(t, tt.expected, nullToString(tt.input))
		})
	}
}

func TestURLKey(t *testing.T) {
	assertEqual(t, "https://x/sites/a", urlKey("HTTPS://X/Sites/A/"))
	assertEqual(t, "https://x/sites/a", urlKey(" https://x/sites/a "))
	assertEqual(t, "", urlKey(""))
}

// ============================================================================
// Directory Read Tests
// ============================================================================

func TestListHubs(t *testing.T) {
	repo := newTestRepo(t)
	importTestSnapshot(t, repo)
	ctx := context.Background()

	t.Run("returns hubs in import order", func(t *testing.T) {
		hubs, err := repo.ListHubs(ctx, "https://contoso.example/")
		assertNoError(t, err)
		assertEqual(t, 2, len(hubs))
		assertEqual(t, "h1", hubs[0].ID)
		assertEqual(t, "People", hubs[0].Description)
		assertEqual(t, "h2", hubs[1].ID)
		assertEqual(t, "", hubs[1].Title)
	})

	t.Run("empty scope lists the snapshot", func(t *testing.T) {
		hubs, err := repo.ListHubs(ctx, "")
		assertNoError(t, err)
		assertEqual(t, 2, len(hubs))
	})

	t.Run("foreign scope is not found", func(t *testing.T) {
		_, err := repo.ListHubs(ctx, "https://fabrikam.example")
		assertStatus(t, err, http.StatusNotFound)
	})
}

func TestListHubsEmptySnapshot(t *testing.T) {
	repo := newTestRepo(t)
	hubs, err := repo.ListHubs(context.Background(), "https://anything")
	assertNoError(t, err)
	assertEqual(t, 0, len(hubs))
}

func TestGetWebIdentity(t *testing.T) {
	repo := newTestRepo(t)
	importTestSnapshot(t, repo)
	ctx := context.Background()

	id, err := repo.GetWebIdentity(ctx, "https://CONTOSO.example/sites/HR/")
	assertNoError(t, err)
	assertEqual(t, domain.WebIdentity{SelfID: "w1", HubPointerID: "w1"}, id)

	id, err = repo.GetWebIdentity(ctx, "https://contoso.example/sites/it")
	assertNoError(t, err)
	assertEqual(t, "", id.HubPointerID)

	_, err = repo.GetWebIdentity(ctx, "https://contoso.example/sites/missing")
	assertStatus(t, err, http.StatusNotFound)
}

func TestGetDeclaredAssociations(t *testing.T) {
	repo := newTestRepo(t)
	importTestSnapshot(t, repo)
	ctx := context.Background()

	t.Run("encoded sites decode", func(t *testing.T) {
		payload, err := repo.GetDeclaredAssociations(ctx, "https://contoso.example/sites/hr")
		assertNoError(t, err)
		sites, err := payload.Decode()
		assertNoError(t, err)
		assertEqual(t, []domain.DeclaredSite{
			{SiteID: "p1", Title: "Payroll", SiteURL: "https://contoso.example/sites/payroll"},
		}, sites)
	})

	t.Run("raw payload is stored verbatim", func(t *testing.T) {
		payload, err := repo.GetDeclaredAssociations(ctx, "https://contoso.example/sites/it")
		assertNoError(t, err)
		_, err = payload.Decode()
		var df *directory.DecodeFailed
		if !errors.As(err, &df) {
			t.Fatalf("expected *directory.DecodeFailed, got %v", err)
		}
	})

	t.Run("missing hub is not found", func(t *testing.T) {
		_, err := repo.GetDeclaredAssociations(ctx, "https://contoso.example/sites/none")
		assertStatus(t, err, http.StatusNotFound)
	})
}

func TestSearchByAffiliation(t *testing.T) {
	repo := newTestRepo(t)
	importTestSnapshot(t, repo)
	ctx := context.Background()

	t.Run("filters by department, class and excluded path", func(t *testing.T) {
		rows, err := repo.SearchByAffiliation(ctx, directory.SearchQuery{
			HubID:      "h1",
			ExcludeURL: "https://contoso.example/sites/HR",
		})
		assertNoError(t, err)
		assertEqual(t, 2, len(rows))
		assertEqual(t, "https://contoso.example/sites/payroll", rows[0].Value("Path"))
		assertEqual(t, "p1", rows[0].Value("SiteId"))
		assertEqual(t, "https://contoso.example/sites/benefits", rows[1].Value("Path"))
		// unset columns are omitted from the row
		assertEqual(t, 1, len(rows[1].Cells))
	})

	t.Run("respects row limit", func(t *testing.T) {
		rows, err := repo.SearchByAffiliation(ctx, directory.SearchQuery{HubID: "h1", RowLimit: 1})
		assertNoError(t, err)
		assertEqual(t, 1, len(rows))
	})

	t.Run("unknown hub yields no rows", func(t *testing.T) {
		rows, err := repo.SearchByAffiliation(ctx, directory.SearchQuery{HubID: "nope"})
		assertNoError(t, err)
		assertEqual(t, 0, len(rows))
	})
}

func TestImportReplacesSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	importTestSnapshot(t, repo)

	err := repo.Import(context.Background(), &repository.Snapshot{
		Hubs: []directory.HubEntry{{ID: "only", SiteURL: "https://x/only"}},
	})
	assertNoError(t, err)

	hubs, err := repo.ListHubs(context.Background(), "https://contoso.example")
	assertNoError(t, err)
	assertEqual(t, 1, len(hubs))
	assertEqual(t, "only", hubs[0].ID)

	_, err = repo.GetWebIdentity(context.Background(), "https://contoso.example/sites/hr")
	assertStatus(t, err, http.StatusNotFound)
}

func TestFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")

	repo, err := New(path)
	assertNoError(t, err)
	assertNoError(t, repo.Import(context.Background(), testSnapshot()))
	assertNoError(t, repo.Close())

	reopened, err := New(path)
	assertNoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	hubs, err := reopened.ListHubs(context.Background(), "")
	assertNoError(t, err)
	assertEqual(t, 2, len(hubs))
}
