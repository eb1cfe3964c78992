// Package project locates and parses javelin.toml, the per-project manifest
// carrying analysis defaults for the CLI.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"javelin/internal/flow"
)

// ManifestName is the file the CLI searches upward for.
const ManifestName = "javelin.toml"

// Manifest is a parsed javelin.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the manifest layout.
type Config struct {
	Project  ProjectConfig  `toml:"project"`
	Analysis AnalysisConfig `toml:"analysis"`
}

type ProjectConfig struct {
	Name string `toml:"name"`
}

// AnalysisConfig carries the flow-analysis toggles and limits. Omitted
// fields keep the analyzer defaults.
type AnalysisConfig struct {
	ReportUnreachable       *bool `toml:"report_unreachable"`
	ReportPossibleNullDeref *bool `toml:"report_possible_null_deref"`
	MaxDiagnostics          int   `toml:"max_diagnostics"`
	CellBudget              int   `toml:"cell_budget"`
}

// Find walks upward from startDir looking for the manifest file.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load searches upward from startDir and parses the manifest if found. The
// boolean reports whether a manifest exists; a missing manifest is not an
// error.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := parseFile(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

func parseFile(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if meta.IsDefined("project", "name") && strings.TrimSpace(cfg.Project.Name) == "" {
		return Config{}, fmt.Errorf("%s: [project].name must not be empty", path)
	}
	if cfg.Analysis.MaxDiagnostics < 0 {
		return Config{}, fmt.Errorf("%s: [analysis].max_diagnostics must be non-negative", path)
	}
	if cfg.Analysis.CellBudget < 0 {
		return Config{}, fmt.Errorf("%s: [analysis].cell_budget must be non-negative", path)
	}
	return cfg, nil
}

// FlowConfig folds the manifest settings over the analyzer defaults.
func (m *Manifest) FlowConfig() flow.Config {
	cfg := flow.DefaultConfig()
	if m == nil {
		return cfg
	}
	a := m.Config.Analysis
	if a.ReportUnreachable != nil {
		cfg.ReportUnreachable = *a.ReportUnreachable
	}
	if a.ReportPossibleNullDeref != nil {
		cfg.ReportPossibleNullDeref = *a.ReportPossibleNullDeref
	}
	if a.MaxDiagnostics > 0 {
		cfg.MaxDiagnostics = a.MaxDiagnostics
	}
	if a.CellBudget > 0 {
		cfg.CellBudget = a.CellBudget
	}
	return cfg
}
