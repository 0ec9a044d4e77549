package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/claude/gymbuddy/internal/models"
	"github.com/claude/gymbuddy/internal/storage"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	SetsInserted   int64
	SetsDuplicated int64

	UnknownExercises []string
}

// SetStore is the subset of the storage layer the importer writes through.
type SetStore interface {
	GetOrCreateUser(ctx context.Context, username string) (int, error)
	FindExerciseID(ctx context.Context, name string) (int, bool, error)
	InsertSetHistory(ctx context.Context, rows []models.SetLogRow) (int64, error)
}

var _ SetStore = (*storage.DB)(nil)

// Importer reads CSV set-history files and inserts them into the database.
type Importer struct {
	db     SetStore
	state  *StateDB
	log    *slog.Logger
	dryRun bool
	stats  Stats

	userIDs     map[string]int
	exerciseIDs map[string]int
	unknownSeen map[string]bool
}

// New creates a new Importer. state may be nil, in which case no dedup
// tracking happens and every file is processed.
func New(db SetStore, state *StateDB, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{
		db:          db,
		state:       state,
		log:         log,
		dryRun:      dryRun,
		userIDs:     map[string]int{},
		exerciseIDs: map[string]int{},
		unknownSeen: map[string]bool{},
	}
}

// Import processes all .csv files under the given directory.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return &imp.stats, err
	}

	for _, f := range files {
		relPath := filepath.Base(f)

		info, err := os.Stat(f)
		if err != nil {
			imp.log.Warn("stat failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}

		hash, err := HashFile(f)
		if err != nil {
			imp.log.Warn("hash failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}

		if imp.state != nil {
			done, err := imp.state.IsImported(relPath, info.Size(), hash)
			if err != nil {
				return &imp.stats, fmt.Errorf("checking state for %s: %w", relPath, err)
			}
			if done {
				imp.stats.FilesSkipped++
				continue
			}
		}

		rows, err := imp.parseFile(ctx, f)
		if err != nil {
			imp.log.Warn("parse failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}

		imp.stats.FilesProcessed++
		if imp.dryRun {
			imp.stats.SetsInserted += int64(len(rows))
			continue
		}

		inserted, err := imp.batchInsert(ctx, rows)
		if err != nil {
			return &imp.stats, fmt.Errorf("inserting sets from %s: %w", relPath, err)
		}
		imp.stats.SetsInserted += inserted
		imp.stats.SetsDuplicated += int64(len(rows)) - inserted

		if imp.state != nil {
			if err := imp.state.MarkImported(relPath, info.Size(), hash); err != nil {
				return &imp.stats, fmt.Errorf("marking %s imported: %w", relPath, err)
			}
		}
	}

	return &imp.stats, nil
}

// parseFile converts one CSV file into set rows. Expected header:
// user,exercise,week,set_number,weight,reps,logged_at
func (imp *Importer) parseFile(ctx context.Context, path string) ([]models.SetLogRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"user", "exercise", "week", "set_number", "weight", "reps", "logged_at"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var rows []models.SetLogRow
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line+1, err)
		}
		line++

		username := strings.TrimSpace(record[col["user"]])
		exerciseName := strings.TrimSpace(record[col["exercise"]])
		if username == "" || exerciseName == "" {
			return nil, fmt.Errorf("line %d: empty user or exercise", line)
		}

		exerciseID, ok, err := imp.resolveExercise(ctx, exerciseName)
		if err != nil {
			return nil, err
		}
		if !ok {
			if !imp.unknownSeen[exerciseName] {
				imp.unknownSeen[exerciseName] = true
				imp.stats.UnknownExercises = append(imp.stats.UnknownExercises, exerciseName)
			}
			continue
		}

		userID, err := imp.resolveUser(ctx, username)
		if err != nil {
			return nil, err
		}

		week, err := strconv.Atoi(strings.TrimSpace(record[col["week"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid week: %w", line, err)
		}
		setNumber, err := strconv.Atoi(strings.TrimSpace(record[col["set_number"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid set_number: %w", line, err)
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(record[col["weight"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid weight: %w", line, err)
		}
		reps, err := strconv.Atoi(strings.TrimSpace(record[col["reps"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid reps: %w", line, err)
		}
		loggedAt, err := parseTimestamp(strings.TrimSpace(record[col["logged_at"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid logged_at: %w", line, err)
		}

		rows = append(rows, models.SetLogRow{
			UserID:     userID,
			ExerciseID: exerciseID,
			Week:       week,
			SetNumber:  setNumber,
			Weight:     weight,
			Reps:       reps,
			CreatedAt:  loggedAt,
		})
	}

	return rows, nil
}

func (imp *Importer) resolveUser(ctx context.Context, username string) (int, error) {
	if id, ok := imp.userIDs[username]; ok {
		return id, nil
	}
	id, err := imp.db.GetOrCreateUser(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("resolving user %s: %w", username, err)
	}
	imp.userIDs[username] = id
	return id, nil
}

func (imp *Importer) resolveExercise(ctx context.Context, name string) (int, bool, error) {
	key := strings.ToLower(name)
	if id, ok := imp.exerciseIDs[key]; ok {
		return id, true, nil
	}
	id, ok, err := imp.db.FindExerciseID(ctx, name)
	if err != nil {
		return 0, false, fmt.Errorf("resolving exercise %s: %w", name, err)
	}
	if !ok {
		return 0, false, nil
	}
	imp.exerciseIDs[key] = id
	return id, true, nil
}

// batchInsert inserts set rows in chunks to stay within PostgreSQL
// parameter limits. 7 params per row, max 65535 params. Use 5000.
func (imp *Importer) batchInsert(ctx context.Context, rows []models.SetLogRow) (int64, error) {
	const batchSize = 5000
	var totalInserted int64

	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		inserted, err := imp.db.InsertSetHistory(ctx, rows[i:end])
		if err != nil {
			return totalInserted, err
		}
		totalInserted += inserted
	}
	return totalInserted, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t.UTC(), nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}
