package lint

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
)

const marker = "---"

// fieldFormat finds the "---" block; its body is read as key: value lines.
var fieldFormat = frontmatter.NewFormat(marker, marker, unmarshalFields)

// errNoFrontMatter reports a document without a metadata block.
var errNoFrontMatter = errors.New("missing YAML front matter")

var fieldPattern = regexp.MustCompile(`^([A-Za-z0-9_-]+):\s*(.*)$`)

// Metadata is the decoded front matter of one document. Values are trimmed
// and have one pair of surrounding quotes removed.
type Metadata struct {
	Fields map[string]string
	lines  map[string]int // key -> 1-indexed line in the file
}

// Get returns the value of key, "" when absent.
func (m *Metadata) Get(key string) string {
	return m.Fields[key]
}

// Line returns the line the key is declared on, or 1 (the opening marker).
func (m *Metadata) Line(key string) int {
	if n, ok := m.lines[key]; ok {
		return n
	}
	return 1
}

// ParseMetadata decodes the front matter of src. The block must open on the
// first line and be closed by a later "---" line. Inside it, blank lines,
// "#" comments and lines that are not "key: value" are ignored; a repeated
// key keeps its last value.
func ParseMetadata(src []byte) (*Metadata, error) {
	lines := strings.Split(string(src), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}
	if strings.TrimSpace(lines[0]) != marker {
		return nil, errNoFrontMatter
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == marker {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, errNoFrontMatter
	}

	meta := &Metadata{Fields: map[string]string{}, lines: map[string]int{}}
	if end == 1 {
		return meta, nil
	}

	// Normalize the markers so padded "--- " lines are found too.
	block := make([]string, 0, end+2)
	block = append(block, marker)
	block = append(block, lines[1:end]...)
	block = append(block, marker, "")

	if _, err := frontmatter.MustParse(strings.NewReader(strings.Join(block, "\n")), &meta.Fields, fieldFormat); err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return nil, errNoFrontMatter
		}
		return nil, fmt.Errorf("invalid front matter: %w", err)
	}

	for i := 1; i < end; i++ {
		if key, _, ok := parseField(lines[i]); ok {
			meta.lines[key] = i + 1
		}
	}
	return meta, nil
}

// unmarshalFields decodes key: value lines into a *map[string]string.
func unmarshalFields(data []byte, v interface{}) error {
	out, ok := v.(*map[string]string)
	if !ok {
		return fmt.Errorf("unsupported front matter target %T", v)
	}
	if *out == nil {
		*out = map[string]string{}
	}
	for _, line := range bytes.Split(data, []byte("\n")) {
		if key, value, ok := parseField(strings.TrimRight(string(line), "\r")); ok {
			(*out)[key] = value
		}
	}
	return nil
}

func parseField(line string) (key, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", "", false
	}
	m := fieldPattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(unquote(strings.TrimSpace(m[2]))), true
}

// unquote strips one pair of matching single or double quotes.
func unquote(s string) string {
	for _, q := range []string{`"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			if len(s) < 2 {
				return ""
			}
			return s[1 : len(s)-1]
		}
	}
	return s
}
