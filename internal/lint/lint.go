// Package lint checks the metadata hygiene of a Markdown documentation tree.
//
// Every document under the docs directory must open with a front matter
// block of "key: value" lines carrying the required fields. Status values are restricted, deprecated
// documents must name their successor, and archived documents must live in
// the archive directory (and only there). The optional context manifest is
// checked for dangling paths.
package lint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/livetemplate/docpage/internal/config"
	"github.com/livetemplate/docpage/internal/logging"
)

// ErrDocsDirMissing is returned when the docs directory does not exist.
var ErrDocsDirMissing = errors.New("docs/ directory not found")

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// MermaidChecker validates mermaid diagram sources and returns one message
// per invalid diagram.
type MermaidChecker interface {
	Check(ctx context.Context, diagrams []string) ([]string, error)
}

// Report is the outcome of one lint run.
type Report struct {
	Root     string
	Files    int
	Problems []Problem
}

// OK reports whether no problems were found.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

// Summary returns the final status line.
func (r *Report) Summary() string {
	if r.OK() {
		return "docs lint OK"
	}
	return "docs lint failed"
}

// Linter walks a docs tree and collects problems.
type Linter struct {
	cfg     config.LintConfig
	log     logging.Logger
	mermaid MermaidChecker
}

// Option configures a Linter.
type Option func(*Linter)

// WithLogger sets the logger used for progress messages.
func WithLogger(l logging.Logger) Option {
	return func(lt *Linter) { lt.log = logging.OrNoOp(l) }
}

// WithMermaidChecker enables validation of mermaid code blocks.
func WithMermaidChecker(c MermaidChecker) Option {
	return func(lt *Linter) { lt.mermaid = c }
}

// New creates a Linter for the given configuration.
func New(cfg config.LintConfig, opts ...Option) *Linter {
	l := &Linter{cfg: cfg, log: logging.NoOp()}
	for _, opt := range opts {
		opt(l)
	}
	if len(l.cfg.RequiredFields) == 0 {
		l.cfg.RequiredFields = config.DefaultConfig().Lint.RequiredFields
	}
	if len(l.cfg.AllowedStatuses) == 0 {
		l.cfg.AllowedStatuses = config.DefaultConfig().Lint.AllowedStatuses
	}
	return l
}

// Run lints every Markdown file under <root>/<docs_dir> in path order.
func (l *Linter) Run(ctx context.Context, root string) (*Report, error) {
	docsDir := l.cfg.GetDocsDir()
	docsPath := filepath.Join(root, filepath.FromSlash(docsDir))

	info, err := os.Stat(docsPath)
	if err != nil || !info.IsDir() {
		return nil, ErrDocsDirMissing
	}

	files, err := l.collect(root, docsPath)
	if err != nil {
		return nil, err
	}

	report := &Report{Root: root}
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.Files++
		abs := filepath.Join(root, filepath.FromSlash(rel))
		l.log.Debug("linting document", "file", rel)
		report.Problems = append(report.Problems, l.lintFile(ctx, rel, abs)...)
	}

	report.Problems = append(report.Problems, l.checkManifest(root, docsDir)...)

	l.log.Info("lint finished", "files", report.Files, "problems", len(report.Problems))
	return report, nil
}

// collect returns the root-relative slash paths of every non-skipped .md file.
func (l *Linter) collect(root, docsPath string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(docsPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if l.skipped(rel) {
			l.log.Debug("skipping document", "file", rel)
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk docs: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func (l *Linter) skipped(rel string) bool {
	for _, prefix := range l.cfg.Skip {
		if prefix != "" && strings.HasPrefix(rel, filepath.ToSlash(prefix)) {
			return true
		}
	}
	return false
}

func (l *Linter) lintFile(ctx context.Context, rel, abs string) []Problem {
	problem := func(line int, msg, hint string) Problem {
		return Problem{File: rel, Line: line, Message: msg, Hint: hint, source: abs}
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		return []Problem{{File: rel, Message: fmt.Sprintf("failed to read: %v", err)}}
	}
	if !utf8.Valid(src) {
		return []Problem{{File: rel, Message: "failed to read: invalid UTF-8"}}
	}

	meta, err := ParseMetadata(src)
	if errors.Is(err, errNoFrontMatter) {
		return []Problem{problem(1, err.Error(), "start the file with a --- block holding title, owner, status and last_reviewed")}
	}
	if err != nil {
		return []Problem{problem(1, err.Error(), "")}
	}

	var problems []Problem
	for _, check := range l.fieldChecks(meta) {
		if err := validation.Validate(meta.Get(check.field), check.rules...); err != nil {
			problems = append(problems, problem(meta.Line(check.field), err.Error(), check.hint))
		}
	}

	status := meta.Get("status")
	archiveDir := l.cfg.GetArchiveDir()
	inArchive := strings.HasPrefix(rel, archiveDir)
	if inArchive && status != "" && status != "archived" {
		problems = append(problems, problem(meta.Line("status"),
			fmt.Sprintf("%s* must use status=archived (found %q)", archiveDir, status), ""))
	}
	if status == "archived" && !inArchive {
		problems = append(problems, problem(meta.Line("status"),
			fmt.Sprintf("status=archived must live under %s (found %s)", archiveDir, rel),
			"move the file or change its status"))
	}

	if l.mermaid != nil {
		problems = append(problems, l.checkMermaid(ctx, rel, abs, src)...)
	}
	return problems
}

type fieldCheck struct {
	field string
	rules []validation.Rule
	hint  string
}

// fieldChecks builds the ordered per-field rules for one document.
func (l *Linter) fieldChecks(meta *Metadata) []fieldCheck {
	checks := make([]fieldCheck, 0, len(l.cfg.RequiredFields)+3)
	for _, field := range l.cfg.RequiredFields {
		checks = append(checks, fieldCheck{
			field: field,
			rules: []validation.Rule{validation.Required.Error("missing required field: " + field)},
		})
	}

	status := meta.Get("status")
	allowed := make([]any, len(l.cfg.AllowedStatuses))
	for i, s := range l.cfg.AllowedStatuses {
		allowed[i] = s
	}
	checks = append(checks,
		fieldCheck{
			field: "status",
			rules: []validation.Rule{validation.In(allowed...).Error(fmt.Sprintf("invalid status: %q", status))},
			hint:  "use one of: " + strings.Join(l.cfg.AllowedStatuses, ", "),
		},
		fieldCheck{
			field: "last_reviewed",
			rules: []validation.Rule{validation.Match(datePattern).Error(
				fmt.Sprintf("invalid last_reviewed (expected YYYY-MM-DD): %q", meta.Get("last_reviewed")))},
		},
		fieldCheck{
			field: "superseded_by",
			rules: []validation.Rule{validation.When(status == "deprecated",
				validation.Required.Error("status=deprecated requires superseded_by"))},
			hint: "point superseded_by at the replacing document",
		},
	)
	return checks
}
