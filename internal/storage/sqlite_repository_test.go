package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "villageclock-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func TestKVLoadSaveOverwrite(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, ok, err := repo.Load(ctx, "villageclock/state"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := repo.Save(ctx, "villageclock/state", `{"v":1}`); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, "villageclock/state", `{"v":2}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, ok, err := repo.Load(ctx, "villageclock/state")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got != `{"v":2}` {
		t.Fatalf("unexpected value %q", got)
	}
	if err := repo.Save(ctx, "  ", "x"); err == nil {
		t.Fatalf("expected blank key to be rejected")
	}
}

func TestDeductionJournalAppendAndFilter(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	at := parseRFC3339(t, "2026-02-09T09:00:00Z")

	entries := []Deduction{
		{ID: "d1", Account: "main", Kind: "workerApprentice", TaskID: "t1", Day: "2026-02-09", Minutes: 120, AppliedAt: at},
		{ID: "d2", Account: "main", Kind: "labAssistant", TaskID: "t2", Day: "2026-02-09", Minutes: 60, AppliedAt: at.Add(time.Minute)},
		{ID: "d3", Account: "alt", Kind: "workerApprentice", TaskID: "t3", Day: "2026-02-09", Minutes: 180, AppliedAt: at.Add(2 * time.Minute)},
	}
	if err := repo.AppendDeductions(ctx, entries); err != nil {
		t.Fatalf("append: %v", err)
	}
	// same account/kind/day is ignored
	dup := Deduction{ID: "d4", Account: "main", Kind: "workerApprentice", TaskID: "t9", Day: "2026-02-09", Minutes: 120, AppliedAt: at.Add(time.Hour)}
	if err := repo.AppendDeductions(ctx, []Deduction{dup}); err != nil {
		t.Fatalf("append duplicate: %v", err)
	}

	all, err := repo.ListDeductions(ctx, DeductionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 journal entries, got %d", len(all))
	}
	if all[0].ID != "d1" || !all[0].AppliedAt.Equal(at) {
		t.Fatalf("unexpected first entry: %+v", all[0])
	}

	mainOnly, err := repo.ListDeductions(ctx, DeductionFilter{Account: "main"})
	if err != nil {
		t.Fatalf("list main: %v", err)
	}
	if len(mainOnly) != 2 {
		t.Fatalf("expected 2 main entries, got %d", len(mainOnly))
	}

	byTask, err := repo.ListDeductions(ctx, DeductionFilter{TaskID: "t3"})
	if err != nil {
		t.Fatalf("list by task: %v", err)
	}
	if len(byTask) != 1 || byTask[0].Minutes != 180 {
		t.Fatalf("unexpected task filter result: %+v", byTask)
	}

	page, err := repo.ListDeductions(ctx, DeductionFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 1 || page[0].ID != "d2" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestDeductionJournalOrdersBySubSecondTime(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	at := parseRFC3339(t, "2026-02-09T09:00:00Z")

	// whole-second and fractional instants must still sort by time
	entries := []Deduction{
		{ID: "late", Account: "main", Kind: "labAssistant", TaskID: "t1", Day: "2026-02-10", Minutes: 60, AppliedAt: at.Add(500 * time.Millisecond)},
		{ID: "early", Account: "main", Kind: "labAssistant", TaskID: "t1", Day: "2026-02-09", Minutes: 60, AppliedAt: at},
		{ID: "later", Account: "main", Kind: "labAssistant", TaskID: "t1", Day: "2026-02-11", Minutes: 60, AppliedAt: at.Add(time.Second)},
	}
	if err := repo.AppendDeductions(ctx, entries); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := repo.ListDeductions(ctx, DeductionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 || got[0].ID != "early" || got[1].ID != "late" || got[2].ID != "later" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if !got[1].AppliedAt.Equal(at.Add(500 * time.Millisecond)) {
		t.Fatalf("fractional seconds lost: %s", got[1].AppliedAt)
	}
}

func TestSaveRejectsEmptyKey(t *testing.T) {
	repo := setupRepo(t)
	if err := repo.Save(context.Background(), "  ", "x"); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
	fs, err := OpenFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	if err := fs.Save(context.Background(), "", "x"); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey from file store, got %v", err)
	}
}

func TestOpenSQLiteCreatesDirectoryAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "villageclock.db")
	repo, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()

	if err := repo.Save(context.Background(), "k", "v"); err != nil {
		t.Fatalf("save after open: %v", err)
	}
}
