package docpage

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/livetemplate/docpage/internal/assets"
)

// TimestampLayout is the format of the generation time shown in the page header.
const TimestampLayout = "2006-01-02 15:04:05 UTC"

var (
	shellOnce sync.Once
	shell     *template.Template
	shellCSS  template.CSS
	shellErr  error
)

func loadShell() (*template.Template, template.CSS, error) {
	shellOnce.Do(func() {
		src, err := assets.GetPageTemplate()
		if err != nil {
			shellErr = fmt.Errorf("failed to load page template: %w", err)
			return
		}
		css, err := assets.GetPageCSS()
		if err != nil {
			shellErr = fmt.Errorf("failed to load stylesheet: %w", err)
			return
		}
		shell, shellErr = template.New("page").Parse(string(src))
		shellCSS = template.CSS(css)
	})
	return shell, shellCSS, shellErr
}

// Render converts markdown text into a Page. The leading metadata block, if
// any, is skipped.
func Render(markdown string, opts Options) (*Page, error) {
	if !utf8.ValidString(markdown) {
		return nil, ErrNotText
	}

	lines := StripFrontMatter(SplitLines(markdown))

	var (
		doc  *Document
		body string
	)
	switch opts.engine() {
	case EngineMinimal:
		doc = Parse(lines)
		body = RenderBlocks(doc.Blocks)
	case EngineGFM:
		var err error
		doc, body, err = renderGFM(strings.Join(lines, ""))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown engine %q (expected %q or %q)", opts.Engine, EngineMinimal, EngineGFM)
	}

	return &Page{
		Title:       opts.Title,
		Lang:        opts.lang(),
		TOCTitle:    opts.tocTitle(),
		Document:    doc,
		TOCHTML:     RenderTOC(doc.TOC, opts.tocMaxLevel(), opts.tocTitle()),
		BodyHTML:    body,
		GeneratedAt: opts.now(),
	}, nil
}

// RenderFile reads a markdown file and renders it. The page title defaults to
// the file's base name.
func RenderFile(path string, opts Options) (*Page, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &RenderError{File: absPath, Err: err}
	}

	if strings.TrimSpace(opts.Title) == "" {
		opts.Title = filepath.Base(path)
	} else {
		opts.Title = strings.TrimSpace(opts.Title)
	}

	page, err := Render(string(content), opts)
	if err != nil {
		return nil, &RenderError{File: absPath, Err: err}
	}
	page.SourceFile = absPath
	return page, nil
}

// Assemble wraps the page's TOC and body in the standalone HTML shell. The
// title goes through Escape so it reads the same as escaped body text.
func Assemble(p *Page) ([]byte, error) {
	tmpl, css, err := loadShell()
	if err != nil {
		return nil, err
	}

	data := struct {
		Lang        string
		Title       template.HTML
		CSS         template.CSS
		GeneratedAt string
		TOC         template.HTML
		Body        template.HTML
	}{
		Lang:        p.Lang,
		Title:       template.HTML(Escape(p.Title)),
		CSS:         css,
		GeneratedAt: p.GeneratedAt.UTC().Format(TimestampLayout),
		TOC:         template.HTML(p.TOCHTML),
		Body:        template.HTML(p.BodyHTML),
	}
	if data.Lang == "" {
		data.Lang = "en"
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute page template: %w", err)
	}
	return buf.Bytes(), nil
}

// HTML renders and assembles in one step.
func HTML(markdown string, opts Options) ([]byte, error) {
	page, err := Render(markdown, opts)
	if err != nil {
		return nil, err
	}
	return Assemble(page)
}
