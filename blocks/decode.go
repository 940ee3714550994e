package blocks

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedDocument reports a block sequence that is not a well-formed
// list of block-shaped objects. Individual unknown block types are not a
// decode error; only structural violations are.
var ErrMalformedDocument = errors.New("blocks: malformed document")

// DecodeDocument converts a JSON-decoded block list into a Document. Only the
// top-level shape is validated: every entry must be an object carrying a
// string type. Attrs and content are carried through as-is so the renderer
// can apply per-block defaults and skip policies.
func DecodeDocument(raw []any) (Document, error) {
	doc := make(Document, 0, len(raw))
	for i, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: block %d is not an object", ErrMalformedDocument, i)
		}
		blockType, ok := obj["type"].(string)
		if !ok || blockType == "" {
			return nil, fmt.Errorf("%w: block %d is missing a type", ErrMalformedDocument, i)
		}
		block := Block{Type: Type(blockType)}
		if attrs, ok := obj["attrs"].(map[string]any); ok {
			block.Attrs = attrs
		}
		if content, ok := obj["content"].([]any); ok {
			block.Content = decodeSpans(content)
		}
		doc = append(doc, block)
	}
	return doc, nil
}

func decodeSpans(raw []any) []InlineSpan {
	spans := make([]InlineSpan, 0, len(raw))
	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		span := InlineSpan{}
		if t, ok := obj["type"].(string); ok {
			span.Type = t
		}
		if text, ok := obj["text"].(string); ok {
			span.Text = text
		}
		if attrs, ok := obj["attrs"].(map[string]any); ok {
			marks := SpanAttrs{}
			if v, ok := attrs["bold"].(bool); ok {
				marks.Bold = v
			}
			if v, ok := attrs["italic"].(bool); ok {
				marks.Italic = v
			}
			span.Attrs = &marks
		}
		spans = append(spans, span)
	}
	return spans
}

// DecodeMetadata converts the flat metadata object attached to a job payload
// into a Metadata record. Canonical fields are lifted into typed fields;
// everything else lands in Custom. A nil input yields a nil record so callers
// keep the presence/absence distinction.
func DecodeMetadata(raw map[string]any) *Metadata {
	if raw == nil {
		return nil
	}
	meta := &Metadata{}
	for key, value := range raw {
		switch key {
		case "title":
			meta.Title, _ = value.(string)
		case "slug":
			meta.Slug, _ = value.(string)
		case "summary":
			meta.Summary, _ = value.(string)
		case "tags":
			meta.Tags = decodeStringList(value)
		case "folder":
			meta.Folder, _ = value.(string)
		case "author":
			meta.Author, _ = value.(string)
		case "created_at":
			meta.CreatedAt = decodeTime(value)
		case "updated_at":
			meta.UpdatedAt = decodeTime(value)
		default:
			if meta.Custom == nil {
				meta.Custom = map[string]any{}
			}
			meta.Custom[key] = value
		}
	}
	return meta
}

func decodeStringList(value any) []string {
	switch typed := value.(type) {
	case []string:
		return append([]string(nil), typed...)
	case []any:
		out := make([]string, 0, len(typed))
		for _, entry := range typed {
			if s, ok := entry.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func decodeTime(value any) time.Time {
	switch typed := value.(type) {
	case time.Time:
		return typed
	case string:
		if parsed, err := time.Parse(time.RFC3339, typed); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
