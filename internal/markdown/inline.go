package markdown

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-notedown/blocks"
	"github.com/goliatone/go-notedown/pkg/interfaces"
)

const spanTypeText = "text"

// RenderInline flattens an ordered span sequence into one Markdown inline
// string. Adjacent spans carrying identical mark sets are concatenated before
// wrapping so the output never contains redundant delimiter pairs. Spans whose
// type is not text are dropped and reported as warnings; the caller stamps the
// owning block index on them. The function is pure and deterministic.
//
// Markdown-significant characters inside plain text pass through unescaped;
// the pipeline favours fidelity to the author's text over strict escaping.
func RenderInline(spans []blocks.InlineSpan) (string, []interfaces.Warning) {
	var out strings.Builder
	var warnings []interfaces.Warning

	var runText strings.Builder
	var runMarks blocks.SpanAttrs
	runOpen := false

	flush := func() {
		if !runOpen {
			return
		}
		out.WriteString(wrapMarks(runText.String(), runMarks))
		runText.Reset()
		runOpen = false
	}

	for _, span := range spans {
		if span.Type != spanTypeText {
			warnings = append(warnings, interfaces.Warning{
				Type:    interfaces.WarningUnknownSpan,
				Message: fmt.Sprintf("span has unsupported type %q and was skipped", span.Type),
			})
			continue
		}
		if span.Text == "" {
			continue
		}
		marks := span.Marks()
		if runOpen && marks != runMarks {
			flush()
		}
		if !runOpen {
			runMarks = marks
			runOpen = true
		}
		runText.WriteString(span.Text)
	}
	flush()

	return out.String(), warnings
}

// wrapMarks applies delimiters with bold outside italic when both are set.
func wrapMarks(text string, marks blocks.SpanAttrs) string {
	if text == "" {
		return ""
	}
	if marks.Italic {
		text = "_" + text + "_"
	}
	if marks.Bold {
		text = "**" + text + "**"
	}
	return text
}
