package notes

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sherpahq/sherpa/internal/logging"
)

// defaultFolders are created alongside the vault root so daily notes and
// common organizational folders exist before the first write.
var defaultFolders = []string{"Daily Notes", "Tasks", "Journal"}

// Vault provides CRUD, listing, and search over the markdown files under a
// single root directory.
type Vault struct {
	root   string
	loc    *time.Location
	logger *slog.Logger

	now func() time.Time
}

// NewVault opens (and if necessary creates) a vault at root. loc is the
// timezone used for note timestamps; nil means UTC.
func NewVault(root string, loc *time.Location, logger *slog.Logger) (*Vault, error) {
	if root == "" {
		return nil, fmt.Errorf("vault root cannot be empty")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating vault root: %w", err)
	}
	for _, folder := range defaultFolders {
		if err := os.MkdirAll(filepath.Join(abs, folder), 0o755); err != nil {
			return nil, fmt.Errorf("creating vault folder %s: %w", folder, err)
		}
	}
	return &Vault{
		root:   abs,
		loc:    loc,
		logger: logging.WithService(logger, "notes"),
		now:    time.Now,
	}, nil
}

// Root returns the vault's absolute root directory.
func (v *Vault) Root() string {
	return v.root
}

// resolve turns a vault-relative note path into an absolute one, appending
// the .md extension if absent and rejecting anything that escapes the root.
func (v *Vault) resolve(notePath string) (string, error) {
	if !strings.HasSuffix(notePath, ".md") {
		notePath += ".md"
	}
	full := filepath.Join(v.root, filepath.FromSlash(notePath))
	rel, err := filepath.Rel(v.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &PathEscapeError{Path: notePath}
	}
	return full, nil
}

// resolveFolder confines a vault-relative folder path the same way resolve
// confines note paths.
func (v *Vault) resolveFolder(folder string) (string, error) {
	full := filepath.Join(v.root, filepath.FromSlash(folder))
	rel, err := filepath.Rel(v.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &PathEscapeError{Path: folder}
	}
	return full, nil
}

func (v *Vault) relPath(full string) string {
	rel, err := filepath.Rel(v.root, full)
	if err != nil {
		return full
	}
	return filepath.ToSlash(rel)
}

// Note is a parsed markdown file: its frontmatter metadata, the body below
// it, and the raw file content.
type Note struct {
	Path     string         `json:"path"`
	Metadata map[string]any `json:"metadata"`
	Content  string         `json:"content"`
	Raw      string         `json:"raw_content"`
}

// Create writes a new note. Existing notes are refused unless overwrite is
// set. A created timestamp is stamped into the metadata when the caller did
// not supply one.
func (v *Vault) Create(notePath, content string, metadata map[string]any, overwrite bool) (string, error) {
	full, err := v.resolve(notePath)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(full); err == nil && !overwrite {
		return "", &AlreadyExistsError{Path: notePath}
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	if _, ok := metadata["created"]; !ok {
		metadata["created"] = v.now().In(v.loc).Format(time.RFC3339)
	}

	header, err := buildFrontmatter(metadata)
	if err != nil {
		return "", fmt.Errorf("serializing frontmatter: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating note folder: %w", err)
	}
	if err := os.WriteFile(full, []byte(header+content), 0o644); err != nil {
		return "", fmt.Errorf("writing note: %w", err)
	}

	v.logger.Info("note created", slog.String("path", v.relPath(full)))
	return v.relPath(full), nil
}

// Read loads and parses a note.
func (v *Vault) Read(notePath string) (*Note, error) {
	full, err := v.resolve(notePath)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: notePath}
		}
		return nil, fmt.Errorf("reading note: %w", err)
	}

	metadata, body := splitFrontmatter(string(raw))
	return &Note{
		Path:     v.relPath(full),
		Metadata: metadata,
		Content:  body,
		Raw:      string(raw),
	}, nil
}

// Update rewrites an existing note. A nil content keeps the current body;
// appendContent adds to it instead of replacing. Metadata entries merge into
// the existing frontmatter, and an updated timestamp is always stamped.
func (v *Vault) Update(notePath string, content *string, metadata map[string]any, appendContent bool) (string, error) {
	full, err := v.resolve(notePath)
	if err != nil {
		return "", err
	}

	raw, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &NotFoundError{Path: notePath}
		}
		return "", fmt.Errorf("reading note: %w", err)
	}

	existingMeta, existingBody := splitFrontmatter(string(raw))
	if existingMeta == nil {
		existingMeta = map[string]any{}
	}
	for k, val := range metadata {
		existingMeta[k] = val
	}
	existingMeta["updated"] = v.now().In(v.loc).Format(time.RFC3339)

	body := existingBody
	if content != nil {
		if appendContent {
			body = existingBody + "\n" + *content
		} else {
			body = *content
		}
	}

	header, err := buildFrontmatter(existingMeta)
	if err != nil {
		return "", fmt.Errorf("serializing frontmatter: %w", err)
	}
	if err := os.WriteFile(full, []byte(header+body), 0o644); err != nil {
		return "", fmt.Errorf("writing note: %w", err)
	}

	v.logger.Info("note updated", slog.String("path", v.relPath(full)))
	return v.relPath(full), nil
}

// Delete removes a note file.
func (v *Vault) Delete(notePath string) error {
	full, err := v.resolve(notePath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &NotFoundError{Path: notePath}
		}
		return fmt.Errorf("deleting note: %w", err)
	}
	v.logger.Info("note deleted", slog.String("path", v.relPath(full)))
	return nil
}

// NoteInfo describes a note in a directory listing.
type NoteInfo struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Modified string `json:"modified"`
}

// List enumerates notes, newest modification first. folder narrows the scan
// to a subtree, pattern is a file-name glob (default "*.md"), and recursive
// controls whether subfolders are walked.
func (v *Vault) List(folder, pattern string, recursive bool) ([]NoteInfo, error) {
	searchRoot, err := v.resolveFolder(folder)
	if err != nil {
		return nil, err
	}
	if folder != "" {
		if info, err := os.Stat(searchRoot); err != nil || !info.IsDir() {
			return nil, &NotFoundError{Path: folder}
		}
	}
	if pattern == "" {
		pattern = "*.md"
	}

	var notes []NoteInfo
	err = filepath.WalkDir(searchRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != searchRoot {
				return fs.SkipDir
			}
			return nil
		}
		matched, err := filepath.Match(pattern, d.Name())
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if !matched {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		notes = append(notes, NoteInfo{
			Path:     v.relPath(path),
			Name:     d.Name(),
			Modified: info.ModTime().In(v.loc).Format(time.RFC3339),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(notes, func(i, j int) bool {
		return notes[i].Modified > notes[j].Modified
	})
	return notes, nil
}

// SearchResult is one note matching a search query.
type SearchResult struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Matches int    `json:"matches"`
	Context string `json:"context"`
}

// searchContextRadius is how many characters around the first match are
// included in a search result's context snippet.
const searchContextRadius = 100

// Search scans note bodies for a case-insensitive substring, returning
// matches ordered by match count. This is a linear scan over every file in
// scope; there is no index.
func (v *Vault) Search(query, folder string) ([]SearchResult, error) {
	searchRoot, err := v.resolveFolder(folder)
	if err != nil {
		return nil, err
	}
	if folder != "" {
		if info, err := os.Stat(searchRoot); err != nil || !info.IsDir() {
			return nil, &NotFoundError{Path: folder}
		}
	}

	needle := strings.ToLower(query)
	var results []SearchResult
	err = filepath.WalkDir(searchRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			v.logger.Warn("skipping unreadable note",
				slog.String("path", v.relPath(path)),
				logging.Err(err))
			return nil
		}

		content := string(raw)
		lowered := strings.ToLower(content)
		count := strings.Count(lowered, needle)
		if count == 0 {
			return nil
		}

		pos := strings.Index(lowered, needle)
		start := max(0, pos-searchContextRadius)
		end := min(len(content), pos+searchContextRadius)
		context := strings.TrimSpace(content[start:end])

		results = append(results, SearchResult{
			Path:    v.relPath(path),
			Name:    d.Name(),
			Matches: count,
			Context: "..." + context + "...",
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Matches > results[j].Matches
	})
	return results, nil
}

// DailyNote reports the outcome of CreateDaily.
type DailyNote struct {
	Path    string `json:"path"`
	Date    string `json:"date"`
	Existed bool   `json:"existed"`
}

const dailyNoteTemplate = `# %s

## Tasks
- [ ]

## Notes


## Reflection


`

// CreateDaily ensures the daily note for the given YYYY-MM-DD date exists,
// creating it from a template when missing. An empty date means today in the
// vault's timezone.
func (v *Vault) CreateDaily(date string) (*DailyNote, error) {
	if date == "" {
		date = v.now().In(v.loc).Format("2006-01-02")
	}
	notePath := "Daily Notes/" + date + ".md"

	full, err := v.resolve(notePath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(full); err == nil {
		return &DailyNote{Path: v.relPath(full), Date: date, Existed: true}, nil
	}

	metadata := map[string]any{
		"date": date,
		"type": "daily-note",
	}
	rel, err := v.Create(notePath, fmt.Sprintf(dailyNoteTemplate, date), metadata, false)
	if err != nil {
		return nil, err
	}
	return &DailyNote{Path: rel, Date: date, Existed: false}, nil
}
