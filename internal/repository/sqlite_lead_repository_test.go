package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bktrade/site/internal/model"
	"github.com/jmoiron/sqlx"
)

func openTestSQLite(t *testing.T) *SQLiteLeadRepository {
	t.Helper()
	repo, err := OpenSQLiteLeadRepository(context.Background(), filepath.Join(t.TempDir(), "data", "requests.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteLeadRepository_InsertAssignsIDAndCreatedAt(t *testing.T) {
	repo := openTestSQLite(t)
	fixed := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	lead := &model.Lead{Name: "Ivan", Phone: "+7 999 123-45-67", IP: "10.0.0.1"}
	if err := repo.Insert(context.Background(), lead); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if lead.ID <= 0 {
		t.Errorf("expected positive id, got %d", lead.ID)
	}
	if !lead.CreatedAt.Equal(fixed) {
		t.Errorf("expected created_at %v, got %v", fixed, lead.CreatedAt)
	}
	if lead.Status != model.LeadStatusNew {
		t.Errorf("expected status=new, got %q", lead.Status)
	}

	got, err := repo.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(got))
	}
	if got[0].Name != "Ivan" || got[0].Phone != "+7 999 123-45-67" || got[0].IP != "10.0.0.1" {
		t.Errorf("unexpected row: %+v", got[0])
	}
	if !got[0].CreatedAt.Equal(fixed) {
		t.Errorf("expected stored created_at %v, got %v", fixed, got[0].CreatedAt)
	}
}

func TestSQLiteLeadRepository_ListNewestFirstAndLimited(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()
	for _, name := range []string{"first", "second", "third"} {
		if err := repo.Insert(ctx, &model.Lead{Name: name}); err != nil {
			t.Fatalf("Insert %s: %v", name, err)
		}
	}

	got, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(got))
	}
	if got[0].Name != "third" || got[1].Name != "second" {
		t.Errorf("expected [third second], got [%s %s]", got[0].Name, got[1].Name)
	}
	if got[0].ID <= got[1].ID {
		t.Errorf("expected descending ids, got %d then %d", got[0].ID, got[1].ID)
	}
}

func TestSQLiteLeadRepository_UpdateStatus(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()
	lead := &model.Lead{Name: "Ivan"}
	if err := repo.Insert(ctx, lead); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	for i := 0; i < 2; i++ {
		changed, err := repo.UpdateStatus(ctx, lead.ID, model.LeadStatusDone, "Closed, shipped")
		if err != nil {
			t.Fatalf("UpdateStatus #%d: %v", i+1, err)
		}
		if !changed {
			t.Errorf("UpdateStatus #%d: expected changed=true", i+1)
		}
	}

	got, _ := repo.List(ctx, 1)
	if got[0].Status != model.LeadStatusDone || got[0].ManagerNote != "Closed, shipped" {
		t.Errorf("unexpected row after update: status=%q note=%q", got[0].Status, got[0].ManagerNote)
	}
	if !got[0].CreatedAt.Equal(lead.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", lead.CreatedAt, got[0].CreatedAt)
	}
}

func TestSQLiteLeadRepository_UpdateStatus_UnknownID(t *testing.T) {
	repo := openTestSQLite(t)
	changed, err := repo.UpdateStatus(context.Background(), 999, model.LeadStatusDone, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("expected changed=false for unknown id")
	}
}

// An old database without the status/note/ip columns is upgraded in place
// and its rows read back with the default status.
func TestSQLiteLeadRepository_MigratesLegacyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	legacy, err := sqlx.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open legacy: %v", err)
	}
	if _, err := legacy.Exec(sqliteSchema); err != nil {
		t.Fatalf("legacy schema: %v", err)
	}
	if _, err := legacy.Exec(`INSERT INTO requests (name, phone) VALUES ('Old', '123456')`); err != nil {
		t.Fatalf("legacy insert: %v", err)
	}
	_ = legacy.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		repo, err := OpenSQLiteLeadRepository(ctx, path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		got, err := repo.List(ctx, 10)
		if err != nil {
			t.Fatalf("List #%d: %v", i+1, err)
		}
		if len(got) != 1 || got[0].Name != "Old" {
			t.Fatalf("expected legacy row, got %+v", got)
		}
		if got[0].Status != model.LeadStatusNew {
			t.Errorf("expected default status=new, got %q", got[0].Status)
		}
		if got[0].CreatedAt.IsZero() {
			t.Error("expected CURRENT_TIMESTAMP created_at to parse")
		}
		_ = repo.Close()
	}
}
