package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-notedown/blocks"
	"github.com/goliatone/go-notedown/pkg/interfaces"
)

// listKind tracks which tight-list run the assembler is currently inside.
type listKind int

const (
	listNone listKind = iota
	listBullet
	listNumbered
	listCheck
)

// ListContext is the ambient state threaded between sibling block renders.
// It travels value-in/value-out so the renderer stays pure: the numbering
// counter belongs to the document walk, never to a block.
type ListContext struct {
	kind    listKind
	counter int
}

// blockOutput is the rendered form of one block plus the separator class the
// assembler needs to join it with its successor.
type blockOutput struct {
	text    string
	kind    listKind
	skipped bool
}

// RenderBlock maps one block to its Markdown line and the updated list
// context. Unknown block types yield a skipped output and a warning; they
// still reset list numbering because they interrupt the run. Warnings raised
// for unknown inline spans inside the block are stamped with its index.
func RenderBlock(block blocks.Block, index int, lc ListContext) (blockOutput, ListContext, []interfaces.Warning) {
	switch block.Type {
	case blocks.TypeParagraph:
		text, warnings := RenderInline(block.Content)
		return blockOutput{text: text, kind: listNone}, ListContext{}, stampIndex(warnings, index)

	case blocks.TypeHeading:
		prefix := strings.Repeat("#", block.HeadingLevel())
		text, warnings := RenderInline(block.Content)
		return blockOutput{text: prefix + " " + text, kind: listNone}, ListContext{}, stampIndex(warnings, index)

	case blocks.TypeBulletListItem:
		text, warnings := RenderInline(block.Content)
		return blockOutput{text: "- " + text, kind: listBullet},
			ListContext{kind: listBullet}, stampIndex(warnings, index)

	case blocks.TypeNumberedListItem:
		n := 1
		if lc.kind == listNumbered {
			n = lc.counter + 1
		}
		text, warnings := RenderInline(block.Content)
		return blockOutput{text: strconv.Itoa(n) + ". " + text, kind: listNumbered},
			ListContext{kind: listNumbered, counter: n}, stampIndex(warnings, index)

	case blocks.TypeCheckListItem:
		marker := "- [ ] "
		if block.Checked() {
			marker = "- [x] "
		}
		text, warnings := RenderInline(block.Content)
		return blockOutput{text: marker + text, kind: listCheck},
			ListContext{kind: listCheck}, stampIndex(warnings, index)

	default:
		warning := interfaces.Warning{
			Type:      interfaces.WarningUnknownBlock,
			BlockType: string(block.Type),
			Index:     index,
			Message:   fmt.Sprintf("block %d has unsupported type %q and was skipped", index, block.Type),
		}
		return blockOutput{skipped: true}, ListContext{}, []interfaces.Warning{warning}
	}
}

// stampIndex records the owning block position on span-level warnings.
func stampIndex(warnings []interfaces.Warning, index int) []interfaces.Warning {
	for i := range warnings {
		warnings[i].Index = index
	}
	return warnings
}
