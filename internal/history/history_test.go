package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordThenRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"run-1", "run-2", "run-3"} {
		err := s.Record(ctx, Entry{
			RunID:       id,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			Candidate:   "Jane",
			Success:     i%2 == 0,
			MatchScore:  90 + i,
			Termination: "tool_result",
			Iterations:  4,
		})
		if err != nil {
			t.Fatalf("Record(%s): %v", id, err)
		}
	}

	entries, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].RunID != "run-3" || entries[1].RunID != "run-2" {
		t.Fatalf("expected newest first, got %s, %s", entries[0].RunID, entries[1].RunID)
	}
	if entries[0].MatchScore != 92 || !entries[0].Success || entries[1].Success {
		t.Fatalf("unexpected entry contents: %+v", entries)
	}
	if !entries[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("created_at not preserved: %v", entries[0].CreatedAt)
	}
}

func TestRecordReplacesSameRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, Entry{RunID: "run-1", MatchScore: 10}); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	if err := s.Record(ctx, Entry{RunID: "run-1", MatchScore: 80}); err != nil {
		t.Fatalf("second Record: %v", err)
	}

	entries, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 || entries[0].MatchScore != 80 {
		t.Fatalf("expected a single replaced entry, got %+v", entries)
	}
	if entries[0].CreatedAt.IsZero() {
		t.Fatal("expected created_at to default to now")
	}
}

func TestRecordConcurrentRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const workers, perWorker = 8, 50

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []error
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				err := s.Record(ctx, Entry{RunID: fmt.Sprintf("run-%d-%d", w, i), MatchScore: i})
				if err != nil {
					mu.Lock()
					failed = append(failed, err)
					mu.Unlock()
				}
			}
		}(w)
	}
	wg.Wait()

	if len(failed) > 0 {
		t.Fatalf("%d of %d records failed, first: %v", len(failed), workers*perWorker, failed[0])
	}

	entries, err := s.Recent(ctx, MaxLimit)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != MaxLimit {
		t.Fatalf("expected %d entries, got %d", MaxLimit, len(entries))
	}
}

type failingRecorder struct{ err error }

func (f failingRecorder) Record(context.Context, Entry) error { return f.err }

func TestMultiJoinsErrors(t *testing.T) {
	s := newTestStore(t)
	boom := errors.New("sheet unavailable")

	err := Multi{failingRecorder{err: boom}, nil, s}.Record(context.Background(), Entry{RunID: "run-1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}

	entries, err := s.Recent(context.Background(), 10)
	if err != nil || len(entries) != 1 {
		t.Fatalf("store must still record when another recorder fails: %v %v", entries, err)
	}
}

func TestSheetsRecordRow(t *testing.T) {
	var got [][]any
	s := &Sheets{appendRows: func(_ context.Context, rows [][]any) error {
		got = rows
		return nil
	}}

	err := s.Record(context.Background(), Entry{RunID: "run-1", Profile: "Go engineer", MatchAnalysis: "Strong", Message: "Hi"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(got) != 1 || len(got[0]) != 3 || got[0][0] != "Go engineer" || got[0][1] != "Strong" || got[0][2] != "Hi" {
		t.Fatalf("unexpected rows %v", got)
	}

	s.appendRows = func(context.Context, [][]any) error { return errors.New("quota") }
	if err := s.Record(context.Background(), Entry{RunID: "run-2"}); err == nil {
		t.Fatal("expected append error")
	}
}

func TestNewSheetsRequiresID(t *testing.T) {
	if _, err := NewSheets(context.Background(), " ", "", ""); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
}
