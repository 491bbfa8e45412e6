package docpage

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	frontMatterMarker = "---"
	fenceMarker       = "```"
)

// space matches Unicode whitespace, not just the ASCII set RE2's \s covers,
// so a no-break space after "#" or "-" still separates the marker.
const space = `[\s\p{Z}\x{85}\x{1c}-\x{1f}]`

var (
	fencePattern    = regexp.MustCompile("^```([a-zA-Z0-9_-]*)" + space + "*$")
	headingPattern  = regexp.MustCompile(`^(#{1,6})` + space + `+(.+?)` + space + `*$`)
	listItemPattern = regexp.MustCompile(`^` + space + `*-` + space + `+(.+?)` + space + `*$`)
)

// SplitLines splits text into lines, keeping each line's terminator.
// "\n", "\r\n" and "\r" all end a line.
func SplitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i+1])
			start = i + 1
		case '\r':
			end := i + 1
			if end < len(text) && text[end] == '\n' {
				end++
			}
			lines = append(lines, text[start:end])
			start = end
			i = end - 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

// StripFrontMatter drops a leading metadata block delimited by "---" lines.
// An unterminated block is treated as absent and the lines are returned unchanged.
func StripFrontMatter(lines []string) []string {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontMatterMarker {
		return lines
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontMatterMarker {
			return lines[i+1:]
		}
	}
	return lines
}

// parserState holds everything the single pass mutates.
type parserState struct {
	doc *Document

	inCode   bool
	codeLang string
	codeBuf  strings.Builder

	list *Block // open list, nil when closed

	para []string

	headings int
}

// Parse classifies lines into blocks in a single pass and collects the
// table-of-contents entries. It never fails: unterminated fences are closed
// at end of input and unmatched markers stay literal text.
func Parse(lines []string) *Document {
	st := &parserState{doc: &Document{}}
	for _, raw := range lines {
		st.line(strings.TrimRight(raw, "\r\n"))
	}
	st.flushParagraph()
	st.closeList()
	st.flushCode()
	return st.doc
}

// ParseString is Parse over the lines of text, front matter included.
func ParseString(text string) *Document {
	return Parse(SplitLines(text))
}

func (st *parserState) line(line string) {
	if st.inCode {
		if strings.TrimSpace(line) == fenceMarker {
			st.flushCode()
			return
		}
		st.codeBuf.WriteString(line)
		st.codeBuf.WriteByte('\n')
		return
	}

	if m := fencePattern.FindStringSubmatch(line); m != nil {
		st.flushParagraph()
		st.closeList()
		st.inCode = true
		st.codeLang = strings.TrimSpace(m[1])
		st.codeBuf.Reset()
		return
	}

	if m := headingPattern.FindStringSubmatch(line); m != nil {
		st.flushParagraph()
		st.closeList()
		st.headings++
		level := len(m[1])
		title := strings.TrimSpace(m[2])
		anchor := "h-" + strconv.Itoa(st.headings)
		st.doc.TOC = append(st.doc.TOC, TocEntry{Level: level, Title: title, Anchor: anchor})
		st.emit(Block{Kind: HeadingBlock, Level: level, Anchor: anchor, Text: title})
		return
	}

	if m := listItemPattern.FindStringSubmatch(line); m != nil {
		st.flushParagraph()
		if st.list == nil {
			st.list = &Block{Kind: ListBlock}
		}
		st.list.Children = append(st.list.Children, Block{Kind: ListItemBlock, Text: m[1]})
		return
	}

	if strings.TrimSpace(line) == "" {
		st.flushParagraph()
		st.closeList()
		return
	}

	st.para = append(st.para, line)
}

// emit appends a block to the open list if there is one, else to the document.
func (st *parserState) emit(b Block) {
	if st.list != nil && b.Kind == ParagraphBlock {
		st.list.Children = append(st.list.Children, b)
		return
	}
	st.doc.Blocks = append(st.doc.Blocks, b)
}

func (st *parserState) flushParagraph() {
	if len(st.para) == 0 {
		return
	}
	parts := make([]string, 0, len(st.para))
	for _, l := range st.para {
		if s := strings.TrimSpace(l); s != "" {
			parts = append(parts, s)
		}
	}
	st.para = st.para[:0]
	if text := strings.Join(parts, " "); text != "" {
		st.emit(Block{Kind: ParagraphBlock, Text: text})
	}
}

func (st *parserState) closeList() {
	if st.list == nil {
		return
	}
	st.doc.Blocks = append(st.doc.Blocks, *st.list)
	st.list = nil
}

func (st *parserState) flushCode() {
	if !st.inCode {
		return
	}
	st.doc.Blocks = append(st.doc.Blocks, Block{
		Kind: CodeBlock,
		Lang: st.codeLang,
		Code: st.codeBuf.String(),
	})
	st.inCode = false
	st.codeLang = ""
	st.codeBuf.Reset()
}
