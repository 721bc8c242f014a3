package index

import (
	"os"
	"testing"
	"time"

	"github.com/starford/jera/internal/granularity"
	"github.com/starford/jera/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "jera-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func note(path string, g granularity.Granularity, y int, m time.Month, d int) models.PeriodicNote {
	return models.PeriodicNote{
		Path:        path,
		Granularity: g,
		Date:        time.Date(y, m, d, 0, 0, 0, 0, time.Local),
		Checksum:    "cs-" + path,
		UpdatedAt:   time.Now(),
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM periodic_notes`).Scan(&count); err != nil {
		t.Fatalf("periodic_notes table missing: %v", err)
	}
}

func TestUpsertAndGet(t *testing.T) {
	db := testDB(t)
	n := note("daily/2025-06-10.md", granularity.Day, 2025, 6, 10)
	if err := db.Upsert(n); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := db.Get(n.Path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil")
	}
	if got.Granularity != granularity.Day || got.Date.Format(DateLayout) != "2025-06-10" {
		t.Errorf("got = %+v", got)
	}

	// Upsert replaces.
	n.Granularity = granularity.Week
	if err := db.Upsert(n); err != nil {
		t.Fatalf("re-Upsert: %v", err)
	}
	got, _ = db.Get(n.Path)
	if got.Granularity != granularity.Week {
		t.Errorf("granularity after upsert = %v", got.Granularity)
	}
}

func TestGet_Missing(t *testing.T) {
	db := testDB(t)
	got, err := db.Get("nope.md")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("got = %+v, want nil", got)
	}
}

func TestListByGranularity(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(note("daily/2025-06-10.md", granularity.Day, 2025, 6, 10))
	_ = db.Upsert(note("daily/2025-06-11.md", granularity.Day, 2025, 6, 11))
	_ = db.Upsert(note("weekly/2025-W24.md", granularity.Week, 2025, 6, 9))

	days, total, err := db.ListByGranularity(granularity.Day, 10, 0)
	if err != nil {
		t.Fatalf("ListByGranularity: %v", err)
	}
	if total != 2 || len(days) != 2 {
		t.Fatalf("total = %d, len = %d, want 2", total, len(days))
	}
	// Ordered by date descending.
	if days[0].Path != "daily/2025-06-11.md" {
		t.Errorf("days[0] = %s", days[0].Path)
	}

	all, total, err := db.ListByGranularity("", 10, 0)
	if err != nil {
		t.Fatalf("ListByGranularity(all): %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("all total = %d, len = %d, want 3", total, len(all))
	}

	// Pagination.
	page, total, err := db.ListByGranularity(granularity.Day, 1, 1)
	if err != nil {
		t.Fatalf("paginated list: %v", err)
	}
	if total != 2 || len(page) != 1 || page[0].Path != "daily/2025-06-10.md" {
		t.Errorf("page = %+v, total = %d", page, total)
	}
}

func TestFindByDate(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(note("weekly/2025-W24.md", granularity.Week, 2025, 6, 9))

	path, ok, err := db.FindByDate(granularity.Week, "2025-06-09")
	if err != nil || !ok || path != "weekly/2025-W24.md" {
		t.Errorf("FindByDate = %q, %v, %v", path, ok, err)
	}
	_, ok, err = db.FindByDate(granularity.Week, "2025-06-16")
	if err != nil || ok {
		t.Errorf("unexpected hit: %v, %v", ok, err)
	}
}

func TestDeleteAndChecksums(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(note("a.md", granularity.Day, 2025, 1, 1))
	_ = db.Upsert(note("b.md", granularity.Day, 2025, 1, 2))

	cs, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if len(cs) != 2 || cs["a.md"] != "cs-a.md" {
		t.Errorf("checksums = %v", cs)
	}

	if err := db.Delete("a.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n, _ := db.Get("a.md"); n != nil {
		t.Error("deleted row still present")
	}
	// Deleting a missing path is a no-op.
	if err := db.Delete("a.md"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}
