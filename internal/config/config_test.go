package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderConfigGetTOCMaxLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    int
		expected int
	}{
		{"zero", 0, 3},
		{"negative", -1, 3},
		{"too deep", 7, 3},
		{"two", 2, 2},
		{"six", 6, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := RenderConfig{TOCMaxLevel: tt.level}
			if got := cfg.GetTOCMaxLevel(); got != tt.expected {
				t.Errorf("GetTOCMaxLevel() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLintConfigDirs(t *testing.T) {
	tests := []struct {
		name        string
		cfg         LintConfig
		wantDocs    string
		wantArchive string
	}{
		{"defaults", LintConfig{}, "docs", "docs/archive/"},
		{"custom docs", LintConfig{DocsDir: "./handbook/"}, "handbook", "handbook/archive/"},
		{"custom archive", LintConfig{DocsDir: "docs", ArchiveDir: "old"}, "docs", "old/"},
		{"dot docs", LintConfig{DocsDir: "."}, "docs", "docs/archive/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.GetDocsDir(); got != tt.wantDocs {
				t.Errorf("GetDocsDir() = %q, want %q", got, tt.wantDocs)
			}
			if got := tt.cfg.GetArchiveDir(); got != tt.wantArchive {
				t.Errorf("GetArchiveDir() = %q, want %q", got, tt.wantArchive)
			}
		})
	}
}

func TestServerConfigDefaults(t *testing.T) {
	var cfg ServerConfig
	assert.Equal(t, 20.0, cfg.GetRateLimit())
	assert.Equal(t, 40, cfg.GetBurst())

	cfg = ServerConfig{Host: "0.0.0.0", Port: 9000, RateLimit: 5, Burst: 1}
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.Equal(t, 5.0, cfg.GetRateLimit())
	assert.Equal(t, 1, cfg.GetBurst())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docpage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render:\n  toc_max_level: 2\nlint:\n  docs_dir: handbook\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Render.TOCMaxLevel)
	assert.Equal(t, "Contents", cfg.Render.TOCTitle)
	assert.Equal(t, "handbook", cfg.Lint.DocsDir)
	assert.Equal(t, []string{"title", "owner", "status", "last_reviewed"}, cfg.Lint.RequiredFields)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docpage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DOCPAGE_TOC_LEVEL", "5")
	t.Setenv("DOCPAGE_LOG_LEVEL", "debug")
	t.Setenv("DOCPAGE_DOCS_DIR", "manual")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Render.TOCMaxLevel)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "manual", cfg.Lint.DocsDir)
}

func TestLoadEnvInvalidLevel(t *testing.T) {
	t.Setenv("DOCPAGE_TOC_LEVEL", "deep")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadFromDirPrefersDocpageYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docpage.yaml"), []byte("render:\n  lang: de\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docpage.yaml"), []byte("render:\n  lang: fr\n"), 0644))

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "de", cfg.Render.Lang)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docpage.yaml")
	cfg := DefaultConfig()
	cfg.Server.Port = 9999
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, loaded.Server.Port)
}
