package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadWalksUpward(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[project]\nname = \"demo\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, ok, err := Load(nested)
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	if m.Config.Project.Name != "demo" {
		t.Errorf("name = %q", m.Config.Project.Name)
	}
	if m.Root != root {
		t.Errorf("root = %q, want %q", m.Root, root)
	}
}

func TestLoadMissingManifest(t *testing.T) {
	_, ok, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Error("manifest found in empty directory")
	}
}

func TestFlowConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "demo"

[analysis]
report_unreachable = false
max_diagnostics = 7
`)
	m, ok, err := Load(dir)
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	cfg := m.FlowConfig()
	if cfg.ReportUnreachable {
		t.Error("report_unreachable = false not applied")
	}
	if !cfg.ReportPossibleNullDeref {
		t.Error("unset toggle must keep its default")
	}
	if cfg.MaxDiagnostics != 7 {
		t.Errorf("MaxDiagnostics = %d, want 7", cfg.MaxDiagnostics)
	}
}

func TestFlowConfigNilManifest(t *testing.T) {
	var m *Manifest
	cfg := m.FlowConfig()
	if !cfg.ReportUnreachable || !cfg.ReportPossibleNullDeref {
		t.Error("nil manifest must yield defaults")
	}
}

func TestParseRejectsNegativeLimits(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[analysis]\nmax_diagnostics = -1\n")
	_, _, err := Load(dir)
	if err == nil {
		t.Error("negative max_diagnostics accepted")
	}
}
