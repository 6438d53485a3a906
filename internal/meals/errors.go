package meals

import (
	"fmt"
	"strings"
)

// ValidationError indicates a caller-supplied field value outside the
// allowed set. It names the allowed values so the caller can correct the
// request without consulting documentation.
type ValidationError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: must be one of %s", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// NotFoundError indicates that no record with the given id exists in any
// partition.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("meal not found: %s", e.ID)
}

// PersistenceError wraps an underlying storage failure during a partition
// read or write.
type PersistenceError struct {
	Op        string // "read", "write", "delete", "list"
	Partition string // partition date, empty for directory-level failures
	Err       error
}

func (e *PersistenceError) Error() string {
	if e.Partition == "" {
		return fmt.Sprintf("meal storage %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("meal storage %s failed for partition %s: %v", e.Op, e.Partition, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
