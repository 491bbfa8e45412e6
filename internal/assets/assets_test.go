package assets

import (
	"io/fs"
	"strings"
	"testing"
)

func TestGetPageTemplate(t *testing.T) {
	data, err := GetPageTemplate()
	if err != nil {
		t.Fatalf("GetPageTemplate failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("GetPageTemplate returned empty data")
	}
	for _, field := range []string{"{{.Title}}", "{{.CSS}}", "{{.TOC}}", "{{.Body}}", "{{.GeneratedAt}}"} {
		if !strings.Contains(string(data), field) {
			t.Errorf("template is missing %s", field)
		}
	}
}

func TestGetPageCSS(t *testing.T) {
	data, err := GetPageCSS()
	if err != nil {
		t.Fatalf("GetPageCSS failed: %v", err)
	}
	if !strings.Contains(string(data), "pre.codeblock.mermaid") {
		t.Error("stylesheet should style mermaid code blocks")
	}
	if strings.Contains(string(data), "http://") || strings.Contains(string(data), "https://") {
		t.Error("stylesheet must not reference external resources")
	}
}

func TestPageFS(t *testing.T) {
	entries, err := fs.ReadDir(PageFS(), ".")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 embedded files, got %d", len(entries))
	}
}
