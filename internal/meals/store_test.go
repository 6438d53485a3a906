package meals

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), time.UTC, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return store
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Category
		wantErr  bool
	}{
		{name: "lowercase", input: "breakfast", expected: CategoryBreakfast},
		{name: "uppercase normalized", input: "LUNCH", expected: CategoryLunch},
		{name: "surrounding whitespace", input: "  dinner ", expected: CategoryDinner},
		{name: "snack", input: "snack", expected: CategorySnack},
		{name: "unknown value", input: "brunch", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "meal_type", verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLogAndGet(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Log(LogInput{
		Description: "oatmeal with berries",
		Category:    "breakfast",
		LoggedAt:    "2024-01-15T08:30:00Z",
		Metrics:     map[string]float64{"calories": 320, "protein": 12},
	})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	assert.Equal(t, CategoryBreakfast, rec.Category)
	assert.NotEmpty(t, rec.CreatedAt)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)

	got, err := store.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Description, got.Description)
	assert.Equal(t, rec.LoggedAt, got.LoggedAt)
	assert.Equal(t, rec.Metrics, got.Metrics)

	// The record must land in the partition named after its logged_at date.
	_, err = os.Stat(filepath.Join(store.Root(), "2024-01-15.json"))
	require.NoError(t, err)
}

func TestLogRejectsInvalidCategory(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Log(LogInput{Description: "mystery", Category: "brunch"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	// Nothing may be persisted on a validation failure.
	entries, readErr := os.ReadDir(store.Root())
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestLogDefaultsLoggedAt(t *testing.T) {
	store := newTestStore(t)
	fixed := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	rec, err := store.Log(LogInput{Description: "sandwich", Category: "lunch"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10T14:00:00Z", rec.LoggedAt)
	assert.Equal(t, "2024-03-10", rec.PartitionDate())
}

func TestGetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("no-such-id")
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, "no-such-id", nferr.ID)
}

func TestListFilters(t *testing.T) {
	store := newTestStore(t)

	seed := []LogInput{
		{Description: "toast", Category: "breakfast", LoggedAt: "2024-01-01T08:00:00Z"},
		{Description: "salad", Category: "lunch", LoggedAt: "2024-01-02T12:00:00Z"},
		{Description: "soup", Category: "dinner", LoggedAt: "2024-01-03T19:00:00Z"},
		{Description: "apple", Category: "snack", LoggedAt: "2024-01-03T15:00:00Z"},
		{Description: "curry", Category: "dinner", LoggedAt: "2024-01-05T19:00:00Z"},
	}
	for _, in := range seed {
		_, err := store.Log(in)
		require.NoError(t, err)
	}

	t.Run("newest first across partitions", func(t *testing.T) {
		records, err := store.List(ListFilter{})
		require.NoError(t, err)
		require.Len(t, records, 5)
		assert.Equal(t, "curry", records[0].Description)
		assert.Equal(t, "toast", records[4].Description)
	})

	t.Run("category filter", func(t *testing.T) {
		records, err := store.List(ListFilter{Category: "dinner"})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "curry", records[0].Description)
		assert.Equal(t, "soup", records[1].Description)
	})

	t.Run("inclusive date range skips outside partitions", func(t *testing.T) {
		records, err := store.List(ListFilter{StartDate: "2024-01-02", EndDate: "2024-01-04"})
		require.NoError(t, err)
		require.Len(t, records, 3)
		for _, rec := range records {
			assert.GreaterOrEqual(t, rec.PartitionDate(), "2024-01-02")
			assert.LessOrEqual(t, rec.PartitionDate(), "2024-01-04")
		}
	})

	t.Run("limit truncates after sorting", func(t *testing.T) {
		records, err := store.List(ListFilter{Limit: 2})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "curry", records[0].Description)
		assert.Equal(t, "soup", records[1].Description)
	})

	t.Run("invalid category rejected", func(t *testing.T) {
		_, err := store.List(ListFilter{Category: "elevenses"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})
}

func TestUpdateInPlace(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Log(LogInput{
		Description: "pasta",
		Category:    "dinner",
		LoggedAt:    "2024-01-01T19:00:00Z",
		Metrics:     map[string]float64{"calories": 600, "protein": 20},
	})
	require.NoError(t, err)

	desc := "pasta with pesto"
	updated, err := store.Update(rec.ID, UpdateInput{
		Description: &desc,
		Metrics:     map[string]float64{"calories": 650, "fat": 25},
	})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, rec.CreatedAt, updated.CreatedAt)

	// Metric values merge key by key; untouched keys survive.
	assert.Equal(t, map[string]float64{
		"calories": 650,
		"protein":  20,
		"fat":      25,
	}, updated.Metrics)

	got, err := store.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Metrics, got.Metrics)
}

func TestUpdateMovesAcrossPartitions(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Log(LogInput{
		Description: "leftovers",
		Category:    "lunch",
		LoggedAt:    "2024-01-01T12:00:00Z",
	})
	require.NoError(t, err)

	loggedAt := "2024-01-05T12:00:00Z"
	updated, err := store.Update(rec.ID, UpdateInput{LoggedAt: &loggedAt})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", updated.PartitionDate())

	// The old partition held only this record, so the move deletes it.
	_, err = os.Stat(filepath.Join(store.Root(), "2024-01-01.json"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(store.Root(), "2024-01-05.json"))
	require.NoError(t, err)

	got, err := store.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, loggedAt, got.LoggedAt)
}

func TestUpdateValidatesBeforeWriting(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Log(LogInput{
		Description: "eggs",
		Category:    "breakfast",
		LoggedAt:    "2024-01-01T08:00:00Z",
	})
	require.NoError(t, err)

	bad := "yesterday-ish"
	_, err = store.Update(rec.ID, UpdateInput{LoggedAt: &bad})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "logged_at", verr.Field)

	got, err := store.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T08:00:00Z", got.LoggedAt)
}

func TestDeleteRemovesEmptyPartition(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Log(LogInput{Description: "yogurt", Category: "snack", LoggedAt: "2024-02-01T10:00:00Z"})
	require.NoError(t, err)
	second, err := store.Log(LogInput{Description: "banana", Category: "snack", LoggedAt: "2024-02-01T16:00:00Z"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(first.ID))
	// Partition survives while a record remains.
	_, err = os.Stat(filepath.Join(store.Root(), "2024-02-01.json"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(second.ID))
	_, err = os.Stat(filepath.Join(store.Root(), "2024-02-01.json"))
	assert.True(t, os.IsNotExist(err))

	err = store.Delete(second.ID)
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestSummarize(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Log(LogInput{
		Description: "toast",
		Category:    "breakfast",
		LoggedAt:    "2024-01-10T08:00:00Z",
		Metrics:     map[string]float64{"calories": 100, "protein": 4},
	})
	require.NoError(t, err)
	_, err = store.Log(LogInput{
		Description: "apple",
		Category:    "snack",
		LoggedAt:    "2024-01-10T11:00:00Z",
		Metrics:     map[string]float64{"calories": 50, "protein": 6, "fiber": 3},
	})
	require.NoError(t, err)
	_, err = store.Log(LogInput{
		Description: "other day",
		Category:    "dinner",
		LoggedAt:    "2024-01-11T19:00:00Z",
		Metrics:     map[string]float64{"calories": 900},
	})
	require.NoError(t, err)

	summary, err := store.Summarize("2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", summary.Date)
	assert.Equal(t, 2, summary.RecordCount)
	assert.Equal(t, float64(150), summary.Totals["calories"])
	assert.Equal(t, float64(10), summary.Totals["protein"])
	assert.Equal(t, float64(3), summary.Totals["fiber"])
	assert.Zero(t, summary.Totals["carbs"])
	assert.Len(t, summary.ByCategory["breakfast"], 1)
	assert.Len(t, summary.ByCategory["snack"], 1)
	assert.NotContains(t, summary.ByCategory, "dinner")
}

func TestSummarizeDefaultsToToday(t *testing.T) {
	store := newTestStore(t)
	fixed := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	summary, err := store.Summarize("")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", summary.Date)
	assert.Zero(t, summary.RecordCount)
}

func TestCorruptPartitionTreatedAsEmpty(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Log(LogInput{Description: "good", Category: "lunch", LoggedAt: "2024-01-02T12:00:00Z"})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "2024-01-01.json"), []byte("{not json"), 0o644))

	records, err := store.List(ListFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "good", records[0].Description)
}

func TestPartitionDiscoveryIgnoresForeignFiles(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Log(LogInput{Description: "rice", Category: "dinner", LoggedAt: "2024-01-02T19:00:00Z"})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "notes.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "2024-01.json"), []byte("[]"), 0o644))

	dates, err := store.partitionDates()
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-02"}, dates)
}

func TestLogWithoutMetricsSerializesEmptyMacros(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Log(LogInput{Description: "black coffee", Category: "snack", LoggedAt: "2024-02-01T07:00:00Z"})
	require.NoError(t, err)
	require.NotNil(t, rec.Metrics)

	data, err := os.ReadFile(filepath.Join(store.Root(), "2024-02-01.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"macros": {}`)
	assert.NotContains(t, string(data), `"macros": null`)
}

func TestBlockedPartitionSurfacesPersistenceError(t *testing.T) {
	store := newTestStore(t)

	// A directory squatting on the partition path makes every access to
	// that partition fail regardless of process privileges.
	require.NoError(t, os.Mkdir(filepath.Join(store.Root(), "2024-03-05.json"), 0o755))

	_, err := store.Log(LogInput{Description: "toast", Category: "breakfast", LoggedAt: "2024-03-05T08:00:00Z"})
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "2024-03-05", perr.Partition)
}

func TestCrossPartitionMoveFailureLogsOrphan(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))
	store, err := NewStore(t.TempDir(), time.UTC, logger)
	require.NoError(t, err)

	rec, err := store.Log(LogInput{Description: "pasta", Category: "dinner", LoggedAt: "2024-04-01T19:00:00Z"})
	require.NoError(t, err)

	// Block the destination partition so the second write of the move fails
	// after the record has already left its old partition.
	require.NoError(t, os.Mkdir(filepath.Join(store.Root(), "2024-04-02.json"), 0o755))

	newTime := "2024-04-02T19:00:00Z"
	_, err = store.Update(rec.ID, UpdateInput{LoggedAt: &newTime})
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)

	// The record is gone from both partitions now.
	_, err = store.Get(rec.ID)
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)

	logged := logBuf.String()
	assert.Contains(t, logged, "meal lost during cross-partition move")
	assert.Contains(t, logged, `"orphaned":true`)
	assert.Contains(t, logged, rec.ID)
}
