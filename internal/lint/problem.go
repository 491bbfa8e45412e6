package lint

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Problem is a single lint finding.
type Problem struct {
	File    string // Path relative to the lint root, slash separated
	Line    int    // 1-indexed line in File, 0 when not tied to a line
	Message string
	Hint    string // Helpful suggestion, optional

	source string // Absolute path used to print context
}

// String returns the one-line form "file: message" (or "file:line: message").
func (p Problem) String() string {
	if p.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", p.File, p.Line, p.Message)
	}
	return fmt.Sprintf("%s: %s", p.File, p.Message)
}

// Format returns the problem with surrounding source lines and hint.
func (p Problem) Format() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", p.String()))

	if context := p.codeContext(); context != "" {
		b.WriteString(context)
	}

	if p.Hint != "" {
		b.WriteString(fmt.Sprintf("  💡 Tip: %s\n", p.Hint))
	}

	return b.String()
}

// codeContext reads the source file and extracts context around the problem line.
func (p Problem) codeContext() string {
	if p.source == "" || p.Line < 1 {
		return ""
	}

	file, err := os.Open(p.source)
	if err != nil {
		return ""
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > p.Line+2 {
			break
		}
	}

	if p.Line > len(lines) {
		return ""
	}

	var b strings.Builder
	start := max(1, p.Line-2)
	end := min(len(lines), p.Line+2)
	for i := start; i <= end; i++ {
		marker := " "
		if i == p.Line {
			marker = ">"
		}
		b.WriteString(fmt.Sprintf("  %s %2d | %s\n", marker, i, lines[i-1]))
	}
	return b.String()
}
