package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/livetemplate/docpage"
)

// RenderCommand implements the render command.
func RenderCommand(args []string) error {
	var inPath, outPath, title, engine, lang, configPath string
	tocLevel := 0

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, inline, hasInline := strings.Cut(arg, "=")
		value := func() (string, error) {
			if hasInline {
				return inline, nil
			}
			v, err := flagValue(args, i)
			i++
			return v, err
		}

		var err error
		switch name {
		case "--in", "-i":
			inPath, err = value()
		case "--out", "-o":
			outPath, err = value()
		case "--title", "-t":
			title, err = value()
		case "--engine", "-e":
			engine, err = value()
		case "--lang":
			lang, err = value()
		case "--config", "-c":
			configPath, err = value()
		case "--toc-level":
			var v string
			if v, err = value(); err == nil {
				tocLevel, err = parseLevel(v)
			}
		default:
			return fmt.Errorf("unknown flag: %s", arg)
		}
		if err != nil {
			return err
		}
	}

	if inPath == "" || outPath == "" {
		return fmt.Errorf("usage: docpage render --in <md> --out <html> [--title T] [--toc-level N] [--engine minimal|gfm]")
	}

	absIn, err := filepath.Abs(inPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	absOut, err := filepath.Abs(outPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	cfg, err := loadConfig(configPath, filepath.Dir(absIn))
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, "render")
	if err != nil {
		return err
	}

	// CLI flags override config
	opts := renderOptions(cfg.Render)
	opts.Title = title
	if engine != "" {
		opts.Engine = docpage.Engine(engine)
	}
	if tocLevel > 0 {
		opts.TOCMaxLevel = tocLevel
	}
	if lang != "" {
		opts.Lang = lang
	}

	page, err := docpage.RenderFile(absIn, opts)
	if err != nil {
		return err
	}
	html, err := docpage.Assemble(page)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(absOut), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(absOut, html, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	log.Debug("page written", "in", absIn, "out", absOut, "headings", len(page.Document.TOC), "bytes", len(html))
	fmt.Printf("✅ Rendered %s → %s\n", inPath, outPath)
	return nil
}
