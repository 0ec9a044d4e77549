package importer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/claude/gymbuddy/internal/models"
)

// fakeStore records inserted rows and resolves a fixed exercise catalog.
type fakeStore struct {
	users     map[string]int
	exercises map[string]int
	inserted  []models.SetLogRow
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[string]int{},
		exercises: map[string]int{"bench press": 1, "squat": 2},
	}
}

func (f *fakeStore) GetOrCreateUser(_ context.Context, username string) (int, error) {
	if id, ok := f.users[username]; ok {
		return id, nil
	}
	id := len(f.users) + 1
	f.users[username] = id
	return id, nil
}

func (f *fakeStore) FindExerciseID(_ context.Context, name string) (int, bool, error) {
	id, ok := f.exercises[strings.ToLower(name)]
	return id, ok, nil
}

func (f *fakeStore) InsertSetHistory(_ context.Context, rows []models.SetLogRow) (int64, error) {
	f.inserted = append(f.inserted, rows...)
	return int64(len(rows)), nil
}

const sampleCSV = `user,exercise,week,set_number,weight,reps,logged_at
alice,Bench Press,3,1,60,10,2026-08-20T17:05:00Z
alice,Bench Press,3,2,62.5,8,2026-08-20T17:10:00Z
alice,Squat,3,1,100,5,2026-08-20 17:20:00
`

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing csv: %v", err)
	}
}

// TestImportInsertsSets verifies a well-formed CSV is converted into set
// rows with parsed weights, reps, and timestamps.
func TestImportInsertsSets(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "history.csv", sampleCSV)

	store := newFakeStore()
	imp := New(store, nil, slog.New(slog.DiscardHandler), false)

	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.FilesProcessed != 1 {
		t.Errorf("files processed = %d, want 1", stats.FilesProcessed)
	}
	if stats.SetsInserted != 3 {
		t.Errorf("sets inserted = %d, want 3", stats.SetsInserted)
	}
	if len(store.inserted) != 3 {
		t.Fatalf("stored rows = %d, want 3", len(store.inserted))
	}

	second := store.inserted[1]
	if second.Weight != 62.5 || second.Reps != 8 || second.SetNumber != 2 {
		t.Errorf("row = %+v, want 62.5kg x 8 set 2", second)
	}
	if second.CreatedAt.Hour() != 17 || second.CreatedAt.Minute() != 10 {
		t.Errorf("created_at = %v, want 17:10", second.CreatedAt)
	}
	if store.inserted[2].ExerciseID != 2 {
		t.Errorf("squat exercise_id = %d, want 2", store.inserted[2].ExerciseID)
	}
}

// TestImportDryRun verifies dry-run counts rows without writing.
func TestImportDryRun(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "history.csv", sampleCSV)

	store := newFakeStore()
	imp := New(store, nil, slog.New(slog.DiscardHandler), true)

	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.SetsInserted != 3 {
		t.Errorf("sets inserted = %d, want 3", stats.SetsInserted)
	}
	if len(store.inserted) != 0 {
		t.Errorf("stored rows = %d, want 0 in dry run", len(store.inserted))
	}
}

// TestImportUnknownExercise verifies rows for unknown exercises are
// skipped and reported once per name.
func TestImportUnknownExercise(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "history.csv", `user,exercise,week,set_number,weight,reps,logged_at
alice,Cable Fly,1,1,20,12,2026-08-20
alice,Cable Fly,1,2,20,12,2026-08-20
alice,Squat,1,1,100,5,2026-08-20
`)

	store := newFakeStore()
	imp := New(store, nil, slog.New(slog.DiscardHandler), false)

	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.SetsInserted != 1 {
		t.Errorf("sets inserted = %d, want 1", stats.SetsInserted)
	}
	if len(stats.UnknownExercises) != 1 || stats.UnknownExercises[0] != "Cable Fly" {
		t.Errorf("unknown exercises = %v, want [Cable Fly]", stats.UnknownExercises)
	}
}

// TestImportMissingColumn verifies a CSV without a required column is
// counted as errored, not fatal.
func TestImportMissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "bad.csv", "user,exercise,weight\nalice,Squat,100\n")

	store := newFakeStore()
	imp := New(store, nil, slog.New(slog.DiscardHandler), false)

	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.FilesErrored != 1 {
		t.Errorf("files errored = %d, want 1", stats.FilesErrored)
	}
	if stats.SetsInserted != 0 {
		t.Errorf("sets inserted = %d, want 0", stats.SetsInserted)
	}
}

// TestImportStateSkipsSecondRun verifies the sqlite state DB makes a
// second import of the same file a no-op.
func TestImportStateSkipsSecondRun(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "history.csv", sampleCSV)

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("opening state db: %v", err)
	}
	defer state.Close()

	store := newFakeStore()
	imp := New(store, state, slog.New(slog.DiscardHandler), false)
	if _, err := imp.Import(context.Background(), dir); err != nil {
		t.Fatalf("first import: %v", err)
	}

	imp2 := New(store, state, slog.New(slog.DiscardHandler), false)
	stats, err := imp2.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if stats.FilesSkipped != 1 {
		t.Errorf("files skipped = %d, want 1", stats.FilesSkipped)
	}
	if len(store.inserted) != 3 {
		t.Errorf("stored rows = %d, want 3 (no re-insert)", len(store.inserted))
	}
}
