package notes

import "fmt"

// PathEscapeError indicates a note path that resolves outside the vault root.
type PathEscapeError struct {
	Path string
}

func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("path %s is outside the vault", e.Path)
}

// NotFoundError indicates a note or folder that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("note not found: %s", e.Path)
}

// AlreadyExistsError indicates a create without overwrite hitting an
// existing note.
type AlreadyExistsError struct {
	Path string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("note already exists: %s", e.Path)
}
