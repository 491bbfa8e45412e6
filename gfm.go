package docpage

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// gfmMarkdown is built once; goldmark instances are safe for concurrent use.
var gfmMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{}, 100)),
	),
)

// renderGFM renders body markdown with goldmark. Headings receive the same
// h-N anchors as the minimal engine. The returned Document carries the TOC and
// the heading and fenced code blocks found in the tree.
func renderGFM(body string) (*Document, string, error) {
	source := []byte(body)
	root := gfmMarkdown.Parser().Parse(text.NewReader(source))

	doc := &Document{}
	headings := 0
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			headings++
			anchor := "h-" + strconv.Itoa(headings)
			node.SetAttributeString("id", []byte(anchor))
			title := strings.TrimSpace(nodeText(node, source))
			doc.TOC = append(doc.TOC, TocEntry{Level: node.Level, Title: title, Anchor: anchor})
			doc.Blocks = append(doc.Blocks, Block{Kind: HeadingBlock, Level: node.Level, Anchor: anchor, Text: title})
		case *ast.FencedCodeBlock:
			doc.Blocks = append(doc.Blocks, Block{
				Kind: CodeBlock,
				Lang: string(node.Language(source)),
				Code: codeText(node, source),
			})
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to walk AST: %w", err)
	}

	var buf bytes.Buffer
	if err := gfmMarkdown.Renderer().Render(&buf, source, root); err != nil {
		return nil, "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return doc, strings.TrimRight(buf.String(), "\n"), nil
}

// nodeText concatenates the literal text below n.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func codeText(n *ast.FencedCodeBlock, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(source))
	}
	return b.String()
}

// codeBlockRenderer replaces goldmark's fenced code output with the
// codeblock markup used by the minimal engine.
type codeBlockRenderer struct{}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	block := Block{Kind: CodeBlock, Lang: string(n.Language(source)), Code: codeText(n, source)}
	_, _ = w.WriteString(renderCode(block))
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}
