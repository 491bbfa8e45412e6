// Package commands implements the docpage subcommands.
package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/livetemplate/docpage"
	"github.com/livetemplate/docpage/internal/config"
	"github.com/livetemplate/docpage/internal/logging"
)

// ErrLintFailed is returned by LintCommand after the problems were printed.
var ErrLintFailed = errors.New("docs lint failed")

// loadConfig loads the explicit config file, or probes dir.
func loadConfig(configPath, dir string) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the component logger from the log section of cfg.
func newLogger(cfg *config.Config, component string) (logging.Logger, error) {
	provider, err := logging.NewProvider(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, err
	}
	return provider.GetLogger("docpage." + component), nil
}

// renderOptions maps the render section of cfg onto renderer options.
func renderOptions(cfg config.RenderConfig) docpage.Options {
	return docpage.Options{
		Engine:      docpage.Engine(cfg.Engine),
		TOCMaxLevel: cfg.GetTOCMaxLevel(),
		TOCTitle:    cfg.TOCTitle,
		Lang:        cfg.Lang,
	}
}

// flagValue returns args[i+1] for a flag that requires a value.
func flagValue(args []string, i int) (string, error) {
	if i+1 >= len(args) {
		return "", fmt.Errorf("flag %s requires a value", args[i])
	}
	return args[i+1], nil
}

func parseLevel(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 6 {
		return 0, fmt.Errorf("invalid TOC level: %s (expected 1-6)", s)
	}
	return n, nil
}
