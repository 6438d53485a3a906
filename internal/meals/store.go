package meals

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sherpahq/sherpa/internal/logging"
)

// partitionPattern matches partition file names in the data directory.
// Anything else (temp files, editor droppings) is ignored during discovery.
var partitionPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\.json$`)

// DefaultListLimit bounds List results when the caller does not supply a limit.
const DefaultListLimit = 50

// Store is the daily-partitioned meal record store. All methods re-read the
// partitions they need; no partition content is cached between calls.
//
// Store performs no locking. Two concurrent mutations of the same partition
// race with last-writer-wins semantics, which is accepted for the single-user
// deployment this serves. See the package documentation.
type Store struct {
	root   string
	loc    *time.Location
	logger *slog.Logger

	// now is swapped out by tests that need deterministic timestamps.
	now func() time.Time
}

// NewStore creates a store rooted at dir, creating the directory if needed.
// loc is the timezone used to resolve "today" for DailySummary; nil means UTC.
// logger may be nil, in which case slog.Default() is used.
func NewStore(dir string, loc *time.Location, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("meal store directory cannot be empty")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &PersistenceError{Op: "create", Err: err}
	}
	return &Store{
		root:   dir,
		loc:    loc,
		logger: logging.WithService(logger, "meals"),
		now:    time.Now,
	}, nil
}

// Root returns the data directory the store operates on.
func (s *Store) Root() string {
	return s.root
}

// LogInput carries the fields for creating a record. Metrics holds only the
// metric values the caller actually supplied.
type LogInput struct {
	Description string
	Category    string
	LoggedAt    string // optional; defaults to the current UTC instant
	Metrics     map[string]float64
}

// Log creates a new record and appends it to the partition derived from its
// logged_at date.
func (s *Store) Log(in LogInput) (*Record, error) {
	category, err := ParseCategory(in.Category)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Format(time.RFC3339)
	loggedAt := in.LoggedAt
	if loggedAt == "" {
		loggedAt = now
	}
	if err := validateLoggedAt(loggedAt); err != nil {
		return nil, err
	}

	// Always a map, never nil: records serialize with "macros": {} when no
	// metric was supplied.
	metrics := copyMetrics(in.Metrics)
	if metrics == nil {
		metrics = map[string]float64{}
	}

	rec := Record{
		ID:          uuid.NewString(),
		Description: in.Description,
		Category:    category,
		LoggedAt:    loggedAt,
		Metrics:     metrics,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	date := rec.PartitionDate()
	records, err := s.readPartition(date)
	if err != nil {
		return nil, err
	}
	records = append(records, rec)
	if err := s.writePartition(date, records); err != nil {
		return nil, err
	}

	s.logger.Info("meal logged",
		slog.String("id", rec.ID),
		slog.String("partition", date),
		slog.String("meal_type", string(rec.Category)))
	return &rec, nil
}

// ListFilter narrows List results. StartDate and EndDate are inclusive
// YYYY-MM-DD bounds applied to partition dates before any partition is read.
type ListFilter struct {
	Category  string
	StartDate string
	EndDate   string
	Limit     int
}

// List returns records across partitions, newest first, truncated to the
// filter's limit.
func (s *Store) List(f ListFilter) ([]Record, error) {
	var category Category
	if f.Category != "" {
		c, err := ParseCategory(f.Category)
		if err != nil {
			return nil, err
		}
		category = c
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	dates, err := s.partitionDates()
	if err != nil {
		return nil, err
	}

	var out []Record
	for _, date := range dates {
		// Prune by partition date before touching the file.
		if f.StartDate != "" && date < f.StartDate {
			continue
		}
		if f.EndDate != "" && date > f.EndDate {
			continue
		}
		records, err := s.readPartition(date)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if category != "" && rec.Category != category {
				continue
			}
			out = append(out, rec)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LoggedAt > out[j].LoggedAt
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get finds a record by id, searching partitions newest-first.
func (s *Store) Get(id string) (*Record, error) {
	rec, _, _, err := s.locate(id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateInput carries the fields to change on a record. Nil pointers leave
// the existing value untouched. Metrics entries are merged key by key into
// the record's metric map.
type UpdateInput struct {
	Description *string
	Category    *string
	LoggedAt    *string
	Metrics     map[string]float64
}

// Update applies the supplied fields to the record with the given id. If the
// logged_at date prefix changes, the record moves to the new day's partition.
//
// The move is two separate writes with no cross-partition transaction: the
// old partition is persisted first, then the new one. If the second write
// fails the record exists in neither partition; that failure is logged with
// an "orphaned" marker so it can be found and repaired by hand.
func (s *Store) Update(id string, in UpdateInput) (*Record, error) {
	// Validate before any partition is touched.
	var category Category
	if in.Category != nil {
		c, err := ParseCategory(*in.Category)
		if err != nil {
			return nil, err
		}
		category = c
	}
	if in.LoggedAt != nil {
		if err := validateLoggedAt(*in.LoggedAt); err != nil {
			return nil, err
		}
	}

	rec, oldDate, records, err := s.locate(id)
	if err != nil {
		return nil, err
	}

	updated := *rec
	if in.Description != nil {
		updated.Description = *in.Description
	}
	if in.Category != nil {
		updated.Category = category
	}
	if in.LoggedAt != nil {
		updated.LoggedAt = *in.LoggedAt
	}
	if len(in.Metrics) > 0 {
		merged := copyMetrics(updated.Metrics)
		if merged == nil {
			merged = make(map[string]float64, len(in.Metrics))
		}
		for k, v := range in.Metrics {
			merged[k] = v
		}
		updated.Metrics = merged
	}
	updated.UpdatedAt = s.now().UTC().Format(time.RFC3339)

	newDate := updated.PartitionDate()
	if newDate == oldDate {
		replaceByID(records, updated)
		if err := s.writePartition(oldDate, records); err != nil {
			return nil, err
		}
		return &updated, nil
	}

	// Cross-partition move: drop from the old day, then append to the new.
	remaining := removeByID(records, id)
	if err := s.writePartition(oldDate, remaining); err != nil {
		return nil, err
	}

	dest, err := s.readPartition(newDate)
	if err == nil {
		dest = append(dest, updated)
		err = s.writePartition(newDate, dest)
	}
	if err != nil {
		// The record is gone from both partitions now. Flag it distinctly
		// from ordinary persistence errors so operators can repair it.
		s.logger.Error("meal lost during cross-partition move",
			slog.Bool("orphaned", true),
			slog.String("id", id),
			slog.String("from_partition", oldDate),
			slog.String("to_partition", newDate),
			logging.Err(err))
		return nil, err
	}

	s.logger.Info("meal moved",
		slog.String("id", id),
		slog.String("from_partition", oldDate),
		slog.String("to_partition", newDate))
	return &updated, nil
}

// Delete removes the record with the given id. The containing partition is
// deleted outright when the record was its last entry.
func (s *Store) Delete(id string) error {
	_, date, records, err := s.locate(id)
	if err != nil {
		return err
	}
	return s.writePartition(date, removeByID(records, id))
}

// DailySummary aggregates one partition: per-metric totals over the fixed
// metric set plus records grouped by category.
type DailySummary struct {
	Date        string              `json:"date"`
	RecordCount int                 `json:"meal_count"`
	Totals      map[string]float64  `json:"totals"`
	ByCategory  map[string][]Record `json:"meals_by_type"`
}

// Summarize computes the daily summary for the given YYYY-MM-DD date.
// An empty date means today in the store's configured timezone.
func (s *Store) Summarize(date string) (*DailySummary, error) {
	if date == "" {
		date = s.now().In(s.loc).Format("2006-01-02")
	}

	records, err := s.readPartition(date)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64, len(MetricNames))
	for _, name := range MetricNames {
		totals[name] = 0
	}
	grouped := make(map[string][]Record)
	for _, rec := range records {
		for _, name := range MetricNames {
			totals[name] += rec.Metrics[name]
		}
		key := string(rec.Category)
		grouped[key] = append(grouped[key], rec)
	}

	return &DailySummary{
		Date:        date,
		RecordCount: len(records),
		Totals:      totals,
		ByCategory:  grouped,
	}, nil
}

// locate finds a record by id and returns it together with its partition
// date and the partition's full record list. Partitions are searched in
// descending date order so a duplicate id (which the uniqueness invariant
// rules out) would resolve to the most recent match.
func (s *Store) locate(id string) (*Record, string, []Record, error) {
	dates, err := s.partitionDates()
	if err != nil {
		return nil, "", nil, err
	}
	for _, date := range dates {
		records, err := s.readPartition(date)
		if err != nil {
			return nil, "", nil, err
		}
		for i := range records {
			if records[i].ID == id {
				rec := records[i]
				return &rec, date, records, nil
			}
		}
	}
	return nil, "", nil, &NotFoundError{ID: id}
}

// partitionDates enumerates existing partitions, newest first.
func (s *Store) partitionDates() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	var dates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if m := partitionPattern.FindStringSubmatch(entry.Name()); m != nil {
			dates = append(dates, m[1])
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

func (s *Store) partitionPath(date string) string {
	return filepath.Join(s.root, date+".json")
}

// readPartition loads a partition's records. A missing partition is an empty
// one. Corrupt content degrades to an empty partition with a warning so a
// single bad file cannot take down range queries over its siblings.
func (s *Store) readPartition(date string) ([]Record, error) {
	data, err := os.ReadFile(s.partitionPath(date))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &PersistenceError{Op: "read", Partition: date, Err: err}
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("partition content is not valid JSON, treating as empty",
			slog.String("partition", date),
			logging.Err(err))
		return nil, nil
	}
	return records, nil
}

// writePartition persists a partition atomically via a temp file and rename.
// An empty record list removes the partition file entirely.
func (s *Store) writePartition(date string, records []Record) error {
	path := s.partitionPath(date)

	if len(records) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &PersistenceError{Op: "delete", Partition: date, Err: err}
		}
		return nil
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "write", Partition: date, Err: err}
	}

	tmp, err := os.CreateTemp(s.root, date+".*.tmp")
	if err != nil {
		return &PersistenceError{Op: "write", Partition: date, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Op: "write", Partition: date, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "write", Partition: date, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "write", Partition: date, Err: err}
	}
	return nil
}

// validateLoggedAt ensures the timestamp carries a well-formed date prefix,
// since that prefix becomes a file name.
func validateLoggedAt(loggedAt string) error {
	prefix := datePrefix(loggedAt)
	if _, err := time.Parse("2006-01-02", prefix); err != nil {
		return &ValidationError{
			Field:   "logged_at",
			Value:   loggedAt,
			Allowed: []string{"ISO-8601 timestamps, e.g. 2024-01-15T12:30:00Z"},
		}
	}
	return nil
}

func copyMetrics(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func replaceByID(records []Record, rec Record) {
	for i := range records {
		if records[i].ID == rec.ID {
			records[i] = rec
			return
		}
	}
}

func removeByID(records []Record, id string) []Record {
	out := records[:0]
	for _, rec := range records {
		if rec.ID != id {
			out = append(out, rec)
		}
	}
	return out
}
