package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/livetemplate/docpage/internal/lint"
	"github.com/livetemplate/docpage/internal/mermaid"
)

// LintCommand implements the lint command.
func LintCommand(args []string) error {
	root := "."
	var configPath, docsDir string
	var checkMermaid, verbose bool

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--mermaid":
			checkMermaid = true
		case arg == "--verbose" || arg == "-v":
			verbose = true
		case arg == "--config" || arg == "-c":
			v, err := flagValue(args, i)
			if err != nil {
				return err
			}
			configPath = v
			i++
		case arg == "--docs":
			v, err := flagValue(args, i)
			if err != nil {
				return err
			}
			docsDir = v
			i++
		case !strings.HasPrefix(arg, "-"):
			root = arg
		default:
			return fmt.Errorf("unknown flag: %s", arg)
		}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	cfg, err := loadConfig(configPath, absRoot)
	if err != nil {
		return err
	}
	if docsDir != "" {
		cfg.Lint.DocsDir = docsDir
	}
	log, err := newLogger(cfg, "lint")
	if err != nil {
		return err
	}

	opts := []lint.Option{lint.WithLogger(log)}
	if checkMermaid {
		opts = append(opts, lint.WithMermaidChecker(&mermaid.Validator{ScriptURL: cfg.Lint.MermaidURL}))
	}

	report, err := lint.New(cfg.Lint, opts...).Run(context.Background(), absRoot)
	if errors.Is(err, lint.ErrDocsDirMissing) {
		fmt.Fprintln(os.Stderr, err)
		return ErrLintFailed
	}
	if err != nil {
		return err
	}

	if report.OK() {
		fmt.Println(report.Summary())
		return nil
	}

	fmt.Fprintf(os.Stderr, "%s:\n\n", report.Summary())
	for _, p := range report.Problems {
		if verbose {
			fmt.Fprint(os.Stderr, p.Format())
			continue
		}
		fmt.Fprintf(os.Stderr, "- %s: %s\n", p.File, p.Message)
	}
	return ErrLintFailed
}
