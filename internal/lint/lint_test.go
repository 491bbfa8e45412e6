package lint

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livetemplate/docpage/internal/config"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func doc(fields string) string {
	return "---\n" + fields + "---\n\n# Body\n"
}

const validFields = "title: Guide\nowner: platform\nstatus: active\nlast_reviewed: 2024-03-01\n"

func runLint(t *testing.T, root string, opts ...Option) *Report {
	t.Helper()
	report, err := New(config.DefaultConfig().Lint, opts...).Run(context.Background(), root)
	require.NoError(t, err)
	return report
}

func messages(r *Report) []string {
	out := make([]string, len(r.Problems))
	for i, p := range r.Problems {
		out[i] = p.File + ": " + p.Message
	}
	return out
}

func TestLintValidTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/guide.md", doc(validFields))
	writeFile(t, root, "docs/archive/old.md", doc("title: Old\nowner: a\nstatus: archived\nlast_reviewed: 2020-01-01\n"))
	writeFile(t, root, "docs/notes.txt", "not markdown")

	report := runLint(t, root)
	assert.True(t, report.OK(), messages(report))
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, "docs lint OK", report.Summary())
}

func TestLintDocsDirMissing(t *testing.T) {
	_, err := New(config.DefaultConfig().Lint).Run(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrDocsDirMissing)
	assert.Equal(t, "docs/ directory not found", err.Error())
}

func TestLintRules(t *testing.T) {
	tests := []struct {
		name   string
		rel    string
		fields string
		raw    string
		want   []string
	}{
		{
			name:   "missing owner and date",
			rel:    "docs/a.md",
			fields: "title: A\nstatus: draft\n",
			want: []string{
				"docs/a.md: missing required field: owner",
				"docs/a.md: missing required field: last_reviewed",
			},
		},
		{
			name:   "blank title",
			rel:    "docs/a.md",
			fields: "title: \"  \"\nowner: x\nstatus: draft\nlast_reviewed: 2024-01-02\n",
			want:   []string{"docs/a.md: missing required field: title"},
		},
		{
			name:   "invalid status",
			rel:    "docs/a.md",
			fields: "title: A\nowner: x\nstatus: live\nlast_reviewed: 2024-01-02\n",
			want:   []string{`docs/a.md: invalid status: "live"`},
		},
		{
			name:   "bad date",
			rel:    "docs/a.md",
			fields: "title: A\nowner: x\nstatus: draft\nlast_reviewed: March 2024\n",
			want:   []string{`docs/a.md: invalid last_reviewed (expected YYYY-MM-DD): "March 2024"`},
		},
		{
			name:   "deprecated without successor",
			rel:    "docs/a.md",
			fields: "title: A\nowner: x\nstatus: deprecated\nlast_reviewed: 2024-01-02\n",
			want:   []string{"docs/a.md: status=deprecated requires superseded_by"},
		},
		{
			name:   "deprecated with successor",
			rel:    "docs/a.md",
			fields: "title: A\nowner: x\nstatus: deprecated\nlast_reviewed: 2024-01-02\nsuperseded_by: docs/b.md\n",
		},
		{
			name:   "active file in archive",
			rel:    "docs/archive/a.md",
			fields: validFields,
			want:   []string{`docs/archive/a.md: docs/archive/* must use status=archived (found "active")`},
		},
		{
			name:   "archived file outside archive",
			rel:    "docs/a.md",
			fields: "title: A\nowner: x\nstatus: archived\nlast_reviewed: 2024-01-02\n",
			want:   []string{"docs/a.md: status=archived must live under docs/archive/ (found docs/a.md)"},
		},
		{
			name:   "owner handle with at sign",
			rel:    "docs/a.md",
			fields: "title: A\nowner: @alice\nstatus: draft\nlast_reviewed: 2024-01-02\n",
		},
		{
			name:   "colon inside title",
			rel:    "docs/a.md",
			fields: "title: Guide: Part 1\nowner: x\nstatus: draft\nlast_reviewed: 2024-01-02\n",
		},
		{
			name:   "hash inside title",
			rel:    "docs/a.md",
			fields: "title: A # note\nowner: x\nstatus: draft\nlast_reviewed: 2024-01-02\n",
		},
		{
			name:   "comments and stray lines ignored",
			rel:    "docs/a.md",
			fields: "# reviewed quarterly\ntitle: 'A'\nnot a field\n\nowner: x\nstatus: draft\nlast_reviewed: 2024-01-02\n",
		},
		{
			name:   "duplicate key keeps last value",
			rel:    "docs/a.md",
			fields: "title: A\nowner: x\nstatus: draft\nlast_reviewed: 2024-01-02\ntitle: \"\"\n",
			want:   []string{"docs/a.md: missing required field: title"},
		},
		{
			name:   "duplicate key recovers on last value",
			rel:    "docs/a.md",
			fields: "title: \"\"\nowner: x\nstatus: live\nstatus: draft\nlast_reviewed: 2024-01-02\ntitle: B\n",
		},
		{
			name: "blank line before front matter",
			rel:  "docs/a.md",
			raw:  "\n" + doc(validFields),
			want: []string{"docs/a.md: missing YAML front matter"},
		},
		{
			name: "unterminated front matter",
			rel:  "docs/a.md",
			raw:  "---\n" + validFields + "\n# Body\n",
			want: []string{"docs/a.md: missing YAML front matter"},
		},
		{
			name: "empty front matter block",
			rel:  "docs/a.md",
			raw:  "---\n---\n",
			want: []string{
				"docs/a.md: missing required field: title",
				"docs/a.md: missing required field: owner",
				"docs/a.md: missing required field: status",
				"docs/a.md: missing required field: last_reviewed",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			content := tt.raw
			if content == "" {
				content = doc(tt.fields)
			}
			writeFile(t, root, tt.rel, content)

			report := runLint(t, root)
			if len(tt.want) == 0 {
				assert.True(t, report.OK(), messages(report))
				return
			}
			assert.Equal(t, tt.want, messages(report))
			assert.Equal(t, "docs lint failed", report.Summary())
		})
	}
}

func TestLintMissingFrontMatter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/plain.md", "# Just a heading\n")

	report := runLint(t, root)
	require.Len(t, report.Problems, 1)
	assert.Equal(t, "docs/plain.md: missing YAML front matter", messages(report)[0])
	assert.Equal(t, 1, report.Problems[0].Line)
}

func TestLintInvalidUTF8(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/a.md", doc(validFields))
	writeFile(t, root, "docs/b.md", "---\ntitle: \xff\xfe\n---\n")

	report := runLint(t, root)
	assert.Equal(t, []string{"docs/b.md: failed to read: invalid UTF-8"}, messages(report))
}

func TestLintSkipsPrefixes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/plans/p.md", "no front matter\n")
	writeFile(t, root, "docs/_meta/templates/t.md", "no front matter\n")
	writeFile(t, root, "docs/archive/plans/old.md", "no front matter\n")
	writeFile(t, root, "docs/guide.md", doc(validFields))

	report := runLint(t, root)
	assert.True(t, report.OK(), messages(report))
	assert.Equal(t, 1, report.Files)
}

func TestLintOrderIsSorted(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/z.md", "plain\n")
	writeFile(t, root, "docs/a/b.md", "plain\n")
	writeFile(t, root, "docs/m.md", "plain\n")

	report := runLint(t, root)
	files := []string{}
	for _, p := range report.Problems {
		files = append(files, p.File)
	}
	assert.Equal(t, []string{"docs/a/b.md", "docs/m.md", "docs/z.md"}, files)
}

func TestLintCustomConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "handbook/a.md", doc("title: A\nstatus: review\n"))

	cfg := config.LintConfig{
		DocsDir:         "handbook",
		RequiredFields:  []string{"title", "status"},
		AllowedStatuses: []string{"review", "published"},
	}
	report, err := New(cfg).Run(context.Background(), root)
	require.NoError(t, err)
	assert.True(t, report.OK(), messages(report))
}

func TestLintProblemLines(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/a.md", doc("title: A\nowner: x\nstatus: live\nlast_reviewed: 2024-01-02\n"))

	report := runLint(t, root)
	require.Len(t, report.Problems, 1)
	p := report.Problems[0]
	assert.Equal(t, 4, p.Line)
	assert.Equal(t, `docs/a.md:4: invalid status: "live"`, p.String())

	formatted := p.Format()
	assert.Contains(t, formatted, `✗ docs/a.md:4: invalid status: "live"`)
	assert.Contains(t, formatted, ">  4 | status: live")
	assert.Contains(t, formatted, "💡 Tip: use one of: draft, active, deprecated, archived")
}

func TestLintManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/guide.md", doc(validFields))
	writeFile(t, root, "docs/context-manifest.json", `{
  "docs": {
    "guide": {"path": "docs/guide.md"},
    "gone": {"path": "docs/gone.md"},
    "nopath": {},
    "scalar": 3
  }
}`)

	report := runLint(t, root)
	assert.Equal(t, []string{
		"docs/context-manifest.json: docs.gone.path not found: docs/gone.md",
		"docs/context-manifest.json: docs.nopath.path is required",
		"docs/context-manifest.json: docs.scalar must be an object",
	}, messages(report))
}

func TestLintManifestShape(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"invalid json", "{", "docs/context-manifest.json: invalid JSON"},
		{"docs missing", `{"other": 1}`, ""},
		{"docs not object", `{"docs": []}`, ""},
		{"top level array", `[1, 2]`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, "docs/context-manifest.json", tt.content)

			report := runLint(t, root)
			if tt.want == "" {
				assert.True(t, report.OK(), messages(report))
				return
			}
			require.Len(t, report.Problems, 1)
			assert.True(t, strings.HasPrefix(messages(report)[0], tt.want), messages(report)[0])
		})
	}
}

func TestLintArchiveWithoutStatus(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/archive/a.md", doc("title: A\nowner: x\nlast_reviewed: 2024-01-02\n"))

	report := runLint(t, root)
	assert.Equal(t, []string{"docs/archive/a.md: missing required field: status"}, messages(report))
}

type fakeChecker struct {
	got [][]string
}

func (f *fakeChecker) Check(_ context.Context, diagrams []string) ([]string, error) {
	f.got = append(f.got, diagrams)
	var out []string
	for i, d := range diagrams {
		if strings.Contains(d, "oops") {
			out = append(out, "diagram "+string(rune('1'+i))+": mermaid syntax error detected")
		}
	}
	return out, nil
}

func TestLintMermaid(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/a.md", doc(validFields)+"```mermaid\ngraph TD\n  A-->B\n```\n\n```mermaid\noops\n```\n")
	writeFile(t, root, "docs/b.md", doc(validFields)+"```go\nfunc main() {}\n```\n")

	checker := &fakeChecker{}
	report := runLint(t, root, WithMermaidChecker(checker))

	require.Len(t, checker.got, 1)
	assert.Equal(t, []string{"graph TD\n  A-->B\n", "oops\n"}, checker.got[0])
	assert.Equal(t, []string{"docs/a.md: diagram 2: mermaid syntax error detected"}, messages(report))
}
