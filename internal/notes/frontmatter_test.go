package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		wantMetadata map[string]any
		wantBody     string
	}{
		{
			name:         "no frontmatter",
			content:      "# Heading\n\nBody text.\n",
			wantMetadata: nil,
			wantBody:     "# Heading\n\nBody text.\n",
		},
		{
			name:         "simple block",
			content:      "---\ntitle: Hello\ntags: [a, b]\n---\nBody.\n",
			wantMetadata: map[string]any{"title": "Hello", "tags": []any{"a", "b"}},
			wantBody:     "Body.\n",
		},
		{
			name:         "unterminated block kept as body",
			content:      "---\ntitle: Hello\nBody without closing delimiter",
			wantMetadata: nil,
			wantBody:     "---\ntitle: Hello\nBody without closing delimiter",
		},
		{
			name:         "invalid yaml kept as body",
			content:      "---\n: [unbalanced\n---\nBody.\n",
			wantMetadata: nil,
			wantBody:     "---\n: [unbalanced\n---\nBody.\n",
		},
		{
			name:         "empty content",
			content:      "",
			wantMetadata: nil,
			wantBody:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metadata, body := splitFrontmatter(tt.content)
			assert.Equal(t, tt.wantMetadata, metadata)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestBuildFrontmatterRoundTrip(t *testing.T) {
	metadata := map[string]any{"title": "Hello", "type": "daily-note"}

	header, err := buildFrontmatter(metadata)
	require.NoError(t, err)

	parsed, body := splitFrontmatter(header + "Body.\n")
	assert.Equal(t, metadata, parsed)
	assert.Equal(t, "Body.\n", body)
}

func TestBuildFrontmatterEmpty(t *testing.T) {
	header, err := buildFrontmatter(nil)
	require.NoError(t, err)
	assert.Empty(t, header)
}
