package markdown

import (
	"strings"

	"github.com/goliatone/go-notedown/blocks"
	"github.com/goliatone/go-notedown/pkg/interfaces"
)

// AssembleDocument walks the ordered block sequence, threads list context
// between siblings, and joins rendered blocks with kind-aware spacing:
// consecutive list items of the same kind stay tight, everything else is
// followed by a blank line. When metadata is supplied its front matter is
// prepended, separated from the body by a blank line.
//
// The output is deterministic for a given (document, metadata) pair. An empty
// document yields an empty body; front matter is still emitted if present.
func AssembleDocument(doc blocks.Document, meta *blocks.Metadata) (string, []interfaces.Warning, error) {
	rendered := make([]blockOutput, 0, len(doc))
	var warnings []interfaces.Warning

	lc := ListContext{}
	for i, block := range doc {
		out, next, blockWarnings := RenderBlock(block, i, lc)
		lc = next
		warnings = append(warnings, blockWarnings...)
		// Skipped blocks stay in the sequence: they emit no text, but they
		// break the tight run between their neighbours just as they break
		// the numbering counter.
		rendered = append(rendered, out)
	}

	var body strings.Builder
	for i, out := range rendered {
		if out.skipped {
			continue
		}
		body.WriteString(out.text)
		if tightWithNext(rendered, i) {
			body.WriteString("\n")
		} else {
			body.WriteString("\n\n")
		}
	}

	if meta == nil {
		return body.String(), warnings, nil
	}

	header, err := EncodeFrontMatter(meta)
	if err != nil {
		return "", warnings, err
	}
	if body.Len() == 0 {
		return header, warnings, nil
	}
	return header + "\n" + body.String(), warnings, nil
}

// tightWithNext reports whether block i and its successor belong to the same
// tight-list run, in which case a single newline joins them. A skipped block
// always terminates the run.
func tightWithNext(rendered []blockOutput, i int) bool {
	if rendered[i].kind == listNone {
		return false
	}
	if i+1 >= len(rendered) {
		return false
	}
	next := rendered[i+1]
	if next.skipped {
		return false
	}
	return next.kind == rendered[i].kind
}
