package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/floatchat/floatchat/internal/database"
)

// fakeStore returns canned rows per requested window and records the windows
// it was asked for.
type fakeStore struct {
	rowsByWindow map[int][]database.FloatRecord
	windows      []int
	err          error
}

func (f *fakeStore) QueryObservations(ctx context.Context, filter database.ObservationFilter) ([]database.FloatRecord, error) {
	f.windows = append(f.windows, filter.WindowDays)
	if f.err != nil {
		return nil, f.err
	}
	return f.rowsByWindow[filter.WindowDays], nil
}

func record(id string) database.FloatRecord {
	return database.FloatRecord{FloatID: id, Timestamp: time.Now()}
}

func TestExecutor_FirstAttemptHit(t *testing.T) {
	store := &fakeStore{rowsByWindow: map[int][]database.FloatRecord{
		30: {record("f1")},
	}}
	exec := NewExecutor(store, zerolog.Nop())

	rows, err := exec.Execute(context.Background(), ConstraintSet{
		Parameter: ParamSalinity, Windows: []int{30}, Limit: MaxRows,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if len(store.windows) != 1 || store.windows[0] != 30 {
		t.Errorf("Expected single query at 30 days, got %v", store.windows)
	}
}

func TestExecutor_WidensUntilRowsAppear(t *testing.T) {
	store := &fakeStore{rowsByWindow: map[int][]database.FloatRecord{
		180: {record("old1"), record("old2")},
	}}
	exec := NewExecutor(store, zerolog.Nop())

	rows, err := exec.Execute(context.Background(), ConstraintSet{
		Parameter: ParamOxygen, Windows: []int{30}, Limit: MaxRows,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows after widening, got %d", len(rows))
	}

	// 30 (requested), then the widening sequence until 180 hits
	want := []int{30, 30, 90, 180}
	if len(store.windows) != len(want) {
		t.Fatalf("Expected windows %v, got %v", want, store.windows)
	}
	for i, w := range want {
		if store.windows[i] != w {
			t.Fatalf("Expected windows %v, got %v", want, store.windows)
		}
	}
}

func TestExecutor_EmptyAfterUnbounded(t *testing.T) {
	store := &fakeStore{rowsByWindow: map[int][]database.FloatRecord{}}
	exec := NewExecutor(store, zerolog.Nop())

	rows, err := exec.Execute(context.Background(), ConstraintSet{
		Parameter: ParamSalinity, Windows: []int{7}, Limit: MaxRows,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("Expected no rows, got %d", len(rows))
	}
	// Last attempt removes the time filter
	if store.windows[len(store.windows)-1] != 0 {
		t.Errorf("Expected final unbounded attempt, got windows %v", store.windows)
	}
}

func TestExecutor_AbsoluteRangeNeverWidens(t *testing.T) {
	store := &fakeStore{rowsByWindow: map[int][]database.FloatRecord{}}
	exec := NewExecutor(store, zerolog.Nop())

	r := TimeRange{
		Start: time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC),
	}
	rows, err := exec.Execute(context.Background(), ConstraintSet{
		Parameter: ParamSalinity, Absolute: &r, Limit: MaxRows,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("Expected no rows, got %d", len(rows))
	}
	if len(store.windows) != 1 {
		t.Errorf("Expected a single attempt for absolute range, got %d", len(store.windows))
	}
}

func TestExecutor_RejectsAbsolutePlusWindow(t *testing.T) {
	exec := NewExecutor(&fakeStore{}, zerolog.Nop())

	r := TimeRange{Start: time.Now().AddDate(0, -1, 0), End: time.Now()}
	_, err := exec.Execute(context.Background(), ConstraintSet{
		Parameter: ParamSalinity, Absolute: &r, Windows: []int{30}, Limit: MaxRows,
	})
	if !errors.Is(err, database.ErrInvalidFilter) {
		t.Errorf("Expected ErrInvalidFilter, got %v", err)
	}
}

func TestExecutor_RejectsUnknownParameter(t *testing.T) {
	exec := NewExecutor(&fakeStore{}, zerolog.Nop())

	_, err := exec.Execute(context.Background(), ConstraintSet{
		Parameter: Parameter("chlorophyll"), Limit: MaxRows,
	})
	if !errors.Is(err, database.ErrInvalidFilter) {
		t.Errorf("Expected ErrInvalidFilter, got %v", err)
	}
}

func TestExecutor_PropagatesStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("connection reset")}
	exec := NewExecutor(store, zerolog.Nop())

	_, err := exec.Execute(context.Background(), ConstraintSet{
		Parameter: ParamSalinity, Limit: MaxRows,
	})
	if err == nil {
		t.Fatal("Expected error from store")
	}
}
