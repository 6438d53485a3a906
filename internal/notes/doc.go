// Package notes manages a directory tree of markdown files with optional
// YAML frontmatter, the on-disk layout used by Obsidian-style vaults.
//
// All note paths are relative to the vault root and are resolved with a
// confinement check: any path that would escape the root is rejected. Files
// are plain markdown, so the vault stays compatible with external sync
// clients editing the same tree.
package notes
