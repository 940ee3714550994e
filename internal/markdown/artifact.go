package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// ArtifactContent is a stored artifact split back into its parts.
type ArtifactContent struct {
	FrontMatter map[string]any
	Body        []byte
}

// ReadArtifact splits a stored Markdown artifact into front matter and body.
// Artifacts written without metadata parse as an empty front matter map and
// the full body. Index consumers use this to read fields without re-running
// the conversion.
func ReadArtifact(source []byte) (*ArtifactContent, error) {
	meta := map[string]any{}

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("artifact parse frontmatter: %w", err)
	}

	return &ArtifactContent{
		FrontMatter: meta,
		Body:        body,
	}, nil
}
