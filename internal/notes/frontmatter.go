package notes

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---\n"

// splitFrontmatter separates a leading YAML frontmatter block from the
// markdown body. Content without a block, or with a block that fails to
// parse, comes back with nil metadata and the body untouched.
func splitFrontmatter(content string) (map[string]any, string) {
	if !strings.HasPrefix(content, frontmatterDelimiter) {
		return nil, content
	}
	parts := strings.SplitN(content, frontmatterDelimiter, 3)
	if len(parts) < 3 {
		return nil, content
	}

	var metadata map[string]any
	if err := yaml.Unmarshal([]byte(parts[1]), &metadata); err != nil || metadata == nil {
		return nil, content
	}
	return metadata, parts[2]
}

// buildFrontmatter renders a metadata map as a frontmatter block ready to be
// prepended to a body. Empty metadata produces an empty string so notes
// without metadata stay plain markdown.
func buildFrontmatter(metadata map[string]any) (string, error) {
	if len(metadata) == 0 {
		return "", nil
	}
	data, err := yaml.Marshal(metadata)
	if err != nil {
		return "", err
	}
	return frontmatterDelimiter + string(data) + frontmatterDelimiter, nil
}
