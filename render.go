package docpage

import (
	"fmt"
	"strings"
)

// RenderBlocks serializes blocks to HTML, one element per line.
func RenderBlocks(blocks []Block) string {
	var out []string
	for _, b := range blocks {
		out = appendBlock(out, b)
	}
	return strings.Join(out, "\n")
}

func appendBlock(out []string, b Block) []string {
	switch b.Kind {
	case HeadingBlock:
		return append(out, fmt.Sprintf(`<h%d id="%s">%s</h%d>`, b.Level, b.Anchor, RenderInline(b.Text), b.Level))
	case ParagraphBlock:
		if b.Text == "" {
			return out
		}
		return append(out, "<p>"+RenderInline(b.Text)+"</p>")
	case ListItemBlock:
		return append(out, "<li>"+RenderInline(b.Text)+"</li>")
	case ListBlock:
		out = append(out, "<ul>")
		for _, child := range b.Children {
			out = appendBlock(out, child)
		}
		return append(out, "</ul>")
	case CodeBlock:
		return append(out, renderCode(b))
	default:
		return out
	}
}

func renderCode(b Block) string {
	class := ""
	if b.Lang != "" {
		class = "language-" + b.Lang
	}
	return fmt.Sprintf(`<pre class="%s"><code class="%s">%s</code></pre>`,
		preClass(b.Lang), Escape(class), Escape(b.Code))
}

// preClass marks mermaid blocks so offline tooling can find them.
func preClass(lang string) string {
	if strings.EqualFold(strings.TrimSpace(lang), "mermaid") {
		return "codeblock mermaid"
	}
	return "codeblock"
}

// RenderTOC renders the navigation list for entries at or above maxLevel.
// It returns an empty string when no entry qualifies. maxLevel <= 0 selects
// DefaultTOCMaxLevel.
func RenderTOC(toc []TocEntry, maxLevel int, title string) string {
	if maxLevel <= 0 {
		maxLevel = DefaultTOCMaxLevel
	}
	var items []TocEntry
	for _, e := range toc {
		if e.Level <= maxLevel {
			items = append(items, e)
		}
	}
	if len(items) == 0 {
		return ""
	}

	out := []string{`<nav class="toc">`, `<div class="tocTitle">` + Escape(title) + `</div>`, "<ul>"}
	for _, e := range items {
		indent := (e.Level - 1) * 12
		out = append(out, fmt.Sprintf(`<li style="margin-left:%dpx"><a href="#%s">%s</a></li>`,
			indent, e.Anchor, RenderInline(e.Title)))
	}
	out = append(out, "</ul></nav>")
	return strings.Join(out, "\n")
}
