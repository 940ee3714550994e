package markdown

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-notedown/blocks"
)

const frontMatterDelimiter = "---\n"

// EncodeFrontMatter serializes a metadata record into a delimited YAML
// header. Field order is stable: canonical fields first in a fixed order,
// then custom fields sorted by key. Absent fields are omitted rather than
// emitted as null placeholders, and array fields render as inline lists.
//
// An empty record still yields a valid near-empty header; callers signal
// "no front matter" by passing no record at all, not by emptiness.
func EncodeFrontMatter(meta *blocks.Metadata) (string, error) {
	if meta == nil {
		return "", nil
	}

	root := &yaml.Node{Kind: yaml.MappingNode}

	appendField := func(key string, value any, flow bool) error {
		var valueNode yaml.Node
		if err := valueNode.Encode(value); err != nil {
			return fmt.Errorf("front matter encode %s: %w", key, err)
		}
		if flow {
			valueNode.Style = yaml.FlowStyle
		}
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
		root.Content = append(root.Content, keyNode, &valueNode)
		return nil
	}

	fields := []struct {
		key   string
		value any
		skip  bool
		flow  bool
	}{
		{key: "title", value: meta.Title, skip: meta.Title == ""},
		{key: "slug", value: meta.Slug, skip: meta.Slug == ""},
		{key: "summary", value: meta.Summary, skip: meta.Summary == ""},
		{key: "tags", value: meta.Tags, skip: len(meta.Tags) == 0, flow: true},
		{key: "folder", value: meta.Folder, skip: meta.Folder == ""},
		{key: "author", value: meta.Author, skip: meta.Author == ""},
		{key: "created_at", value: formatTime(meta.CreatedAt), skip: meta.CreatedAt.IsZero()},
		{key: "updated_at", value: formatTime(meta.UpdatedAt), skip: meta.UpdatedAt.IsZero()},
	}
	for _, field := range fields {
		if field.skip {
			continue
		}
		if err := appendField(field.key, field.value, field.flow); err != nil {
			return "", err
		}
	}

	customKeys := make([]string, 0, len(meta.Custom))
	for key := range meta.Custom {
		customKeys = append(customKeys, key)
	}
	sort.Strings(customKeys)
	for _, key := range customKeys {
		flow := false
		if _, ok := meta.Custom[key].([]any); ok {
			flow = true
		}
		if _, ok := meta.Custom[key].([]string); ok {
			flow = true
		}
		if err := appendField(key, meta.Custom[key], flow); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	buf.WriteString(frontMatterDelimiter)
	if len(root.Content) > 0 {
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(root); err != nil {
			return "", fmt.Errorf("front matter encode: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return "", fmt.Errorf("front matter encode: %w", err)
		}
	}
	buf.WriteString(frontMatterDelimiter)
	return buf.String(), nil
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339)
}
