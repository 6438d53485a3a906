package meals

import (
	"strings"
)

// Category is the meal type label. The set is closed; every write validates
// against it.
type Category string

const (
	CategoryBreakfast Category = "breakfast"
	CategoryLunch     Category = "lunch"
	CategoryDinner    Category = "dinner"
	CategorySnack     Category = "snack"
)

// Categories lists the allowed category values in a stable order.
func Categories() []string {
	return []string{
		string(CategoryBreakfast),
		string(CategoryLunch),
		string(CategoryDinner),
		string(CategorySnack),
	}
}

// ParseCategory normalizes and validates a category value. Matching is
// case-insensitive; the stored form is always lowercase.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryBreakfast, CategoryLunch, CategoryDinner, CategorySnack:
		return c, nil
	}
	return "", &ValidationError{Field: "meal_type", Value: s, Allowed: Categories()}
}

// MetricNames is the fixed set of numeric fields summed by DailySummary.
// Records may carry any subset; absent metrics count as zero.
var MetricNames = []string{"calories", "protein", "carbs", "fat", "fiber"}

// Record is a single logged meal. Timestamps are stored as ISO-8601 strings
// so that ordering and partitioning are plain string operations, and so the
// on-disk format stays byte-compatible across writers.
type Record struct {
	ID          string             `json:"id"`
	Description string             `json:"description"`
	Category    Category           `json:"meal_type"`
	LoggedAt    string             `json:"logged_at"`
	Metrics     map[string]float64 `json:"macros"`
	CreatedAt   string             `json:"created_at"`
	UpdatedAt   string             `json:"updated_at"`
}

// PartitionDate returns the calendar day this record belongs to, i.e. the
// YYYY-MM-DD prefix of its logged_at timestamp.
func (r Record) PartitionDate() string {
	return datePrefix(r.LoggedAt)
}

func datePrefix(loggedAt string) string {
	if len(loggedAt) < 10 {
		return loggedAt
	}
	return loggedAt[:10]
}
