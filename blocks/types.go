package blocks

import "time"

// Type discriminates the structural kind of a content block.
type Type string

const (
	TypeParagraph        Type = "paragraph"
	TypeHeading          Type = "heading"
	TypeBulletListItem   Type = "bulletListItem"
	TypeNumberedListItem Type = "numberedListItem"
	TypeCheckListItem    Type = "checkListItem"
)

// SpanAttrs carries the formatting marks applied to an inline span. Marks are
// independent booleans and may combine.
type SpanAttrs struct {
	Bold   bool `json:"bold,omitempty"`
	Italic bool `json:"italic,omitempty"`
}

// InlineSpan is a run of text inside a block. A nil Attrs means unformatted
// text. Empty text is valid and renders as nothing.
type InlineSpan struct {
	Type  string     `json:"type"`
	Text  string     `json:"text"`
	Attrs *SpanAttrs `json:"attrs,omitempty"`
}

// Marks returns the effective mark set, treating absent attrs as no marks.
func (s InlineSpan) Marks() SpanAttrs {
	if s.Attrs == nil {
		return SpanAttrs{}
	}
	return *s.Attrs
}

// Block is one structural unit of a note document. Attrs holds type-specific
// data (heading level, checklist state); absent keys fall back to defaults.
type Block struct {
	Type    Type           `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []InlineSpan   `json:"content,omitempty"`
}

// HeadingLevel resolves attrs.level for heading blocks, clamped to 1..6 and
// defaulting to 1 when absent or unreadable.
func (b Block) HeadingLevel() int {
	level := 1
	if raw, ok := b.Attrs["level"]; ok {
		switch v := raw.(type) {
		case int:
			level = v
		case int64:
			level = int(v)
		case float64:
			level = int(v)
		}
	}
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

// Checked resolves attrs.checked for checklist blocks, defaulting to false.
func (b Block) Checked() bool {
	if raw, ok := b.Attrs["checked"]; ok {
		if v, ok := raw.(bool); ok {
			return v
		}
	}
	return false
}

// Document is an ordered sequence of blocks. Order is semantically
// significant and preserved verbatim in rendered output.
type Document []Block

// Metadata is the flat record attached to a conversion job. No field is
// required; absent fields are omitted from the encoded front matter. Custom
// carries caller-defined fields outside the canonical set.
type Metadata struct {
	Title     string         `yaml:"title,omitempty"`
	Slug      string         `yaml:"slug,omitempty"`
	Summary   string         `yaml:"summary,omitempty"`
	Tags      []string       `yaml:"tags,omitempty"`
	Folder    string         `yaml:"folder,omitempty"`
	Author    string         `yaml:"author,omitempty"`
	CreatedAt time.Time      `yaml:"created_at,omitempty"`
	UpdatedAt time.Time      `yaml:"updated_at,omitempty"`
	Custom    map[string]any `yaml:",inline"`
}

// Clone returns a deep enough copy that the pipeline can adjust derived
// fields (slug normalization) without mutating the caller's snapshot.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	out := *m
	if m.Tags != nil {
		out.Tags = append([]string(nil), m.Tags...)
	}
	if m.Custom != nil {
		custom := make(map[string]any, len(m.Custom))
		for k, v := range m.Custom {
			custom[k] = v
		}
		out.Custom = custom
	}
	return &out
}
