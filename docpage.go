// Package docpage renders documentation markdown into standalone, offline-readable
// HTML pages with a generated table of contents.
//
// The default engine is a deliberately small line-oriented parser that understands
// headings, paragraphs, unordered lists, fenced code blocks, inline code and bold
// text. Documents that need full GFM can opt into the goldmark-backed engine.
package docpage

import "time"

// Engine selects the body renderer.
type Engine string

const (
	EngineMinimal Engine = "minimal"
	EngineGFM     Engine = "gfm"
)

// DefaultTOCMaxLevel is the deepest heading level listed in the table of contents.
const DefaultTOCMaxLevel = 3

// Page is a rendered document ready to be assembled into the page shell.
type Page struct {
	Title       string
	SourceFile  string // Absolute path to the source .md file, empty for string input
	Lang        string // html lang attribute
	TOCTitle    string
	Document    *Document
	TOCHTML     string
	BodyHTML    string
	GeneratedAt time.Time
}

// Options controls a single rendering pass.
type Options struct {
	Title       string
	Engine      Engine
	TOCMaxLevel int
	TOCTitle    string
	Lang        string
	Now         func() time.Time // nil = time.Now
}

func (o Options) engine() Engine {
	if o.Engine == "" {
		return EngineMinimal
	}
	return o.Engine
}

func (o Options) tocMaxLevel() int {
	if o.TOCMaxLevel <= 0 {
		return DefaultTOCMaxLevel
	}
	return o.TOCMaxLevel
}

func (o Options) tocTitle() string {
	if o.TOCTitle == "" {
		return "Contents"
	}
	return o.TOCTitle
}

func (o Options) lang() string {
	if o.Lang == "" {
		return "en"
	}
	return o.Lang
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now().UTC()
	}
	return o.Now().UTC()
}
