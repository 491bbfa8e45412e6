package docpage

import "strings"

// BlockKind tags the variant held by a Block.
type BlockKind int

const (
	HeadingBlock BlockKind = iota
	ParagraphBlock
	ListBlock
	ListItemBlock
	CodeBlock
)

func (k BlockKind) String() string {
	switch k {
	case HeadingBlock:
		return "heading"
	case ParagraphBlock:
		return "paragraph"
	case ListBlock:
		return "list"
	case ListItemBlock:
		return "item"
	case CodeBlock:
		return "code"
	default:
		return "unknown"
	}
}

// Block is one structural element of a document.
//
// Text is kept raw; inline transforms are applied when the block is emitted.
type Block struct {
	Kind     BlockKind
	Level    int     // Heading level 1-6
	Anchor   string  // Heading anchor, e.g. "h-3"
	Text     string  // Heading title, paragraph text or list item text
	Children []Block // List contents: items, and paragraphs flushed while the list was open
	Lang     string  // Fence language tag
	Code     string  // Verbatim code, one "\n"-terminated line per source line
}

// TocEntry is the projection of a heading used to build the navigation list.
type TocEntry struct {
	Level  int
	Title  string
	Anchor string
}

// Document is the result of a single parsing pass.
type Document struct {
	Blocks []Block
	TOC    []TocEntry
}

// Headings returns the heading blocks in document order.
func (d *Document) Headings() []Block {
	var out []Block
	for _, b := range d.Blocks {
		if b.Kind == HeadingBlock {
			out = append(out, b)
		}
	}
	return out
}

// CodeBlocks returns every fenced code block, optionally filtered by language
// (case-insensitive). An empty lang matches all blocks.
func (d *Document) CodeBlocks(lang string) []Block {
	var out []Block
	for _, b := range d.Blocks {
		if b.Kind != CodeBlock {
			continue
		}
		if lang == "" || strings.EqualFold(strings.TrimSpace(b.Lang), lang) {
			out = append(out, b)
		}
	}
	return out
}
