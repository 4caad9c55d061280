package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitializeLoadsDefaults(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	userCfg := filepath.Join(tmp, "user.yaml")

	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(userCfg)); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := GetString(KeyServerURL); got != DefaultServerURL {
		t.Fatalf("expected default %s to be %q, got %q", KeyServerURL, DefaultServerURL, got)
	}
	if got := HTTPTimeout(); got != DefaultHTTPTimeout {
		t.Fatalf("expected default timeout %s, got %s", DefaultHTTPTimeout, got)
	}
	if got := GetString(KeyOverlayBackend); got != OverlayBackendSQLite {
		t.Fatalf("expected default overlay backend sqlite, got %q", got)
	}
	if got := GetInt(KeyAutoRefreshSeconds); got != 0 {
		t.Fatalf("expected auto refresh disabled by default, got %d", got)
	}
	if got := GroomConcurrency(); got != DefaultGroomConcurrency {
		t.Fatalf("expected default groom concurrency %d, got %d", DefaultGroomConcurrency, got)
	}
	if got := GetString(KeyOutputFormat); got != "rich" {
		t.Fatalf("expected default %s to be rich, got %q", KeyOutputFormat, got)
	}
}

func TestProjectConfigOverridesUser(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	projectDir := filepath.Join(tmp, "repo")
	projectCfg := filepath.Join(projectDir, ".scrummaster", "config.yaml")
	writeFile(t, projectCfg, `
server:
  url: http://project.local:8000
overlay:
  backend: FILE
`)

	userCfg := filepath.Join(tmp, "user.yaml")
	writeFile(t, userCfg, `
server:
  url: http://user.local:8000
http:
  timeout: 3s
`)

	nested := filepath.Join(projectDir, "sub", "dir")
	mustMkdir(t, nested)
	if err := Initialize(WithWorkingDir(nested), WithUserConfig(userCfg)); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := GetString(KeyServerURL); got != "http://project.local:8000" {
		t.Fatalf("expected project config to win for %s, got %q", KeyServerURL, got)
	}
	if got := HTTPTimeout(); got != 3*time.Second {
		t.Fatalf("expected user timeout to survive merge, got %s", got)
	}
	if got := GetString(KeyOverlayBackend); got != OverlayBackendFile {
		t.Fatalf("expected overlay backend to be normalised to %q, got %q", OverlayBackendFile, got)
	}
}

func TestEnvironmentAndOverridesPrecedence(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	projectCfg := filepath.Join(tmp, ".scrummaster", "config.yaml")
	writeFile(t, projectCfg, `
groom:
  concurrency: 2
`)

	t.Setenv("SM_GROOM_CONCURRENCY", "8")
	t.Setenv("SM_AUTO_REFRESH_SECONDS", "30")

	if err := Initialize(
		WithWorkingDir(tmp),
		WithProjectConfig(projectCfg),
		WithUserConfig(filepath.Join(tmp, "user.yaml")),
	); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := GroomConcurrency(); got != 8 {
		t.Fatalf("expected env to override groom concurrency, got %d", got)
	}
	if got := GetInt(KeyAutoRefreshSeconds); got != 30 {
		t.Fatalf("expected env auto refresh 30, got %d", got)
	}

	if err := ApplyOverrides(map[string]any{KeyGroomConcurrency: 1}); err != nil {
		t.Fatalf("ApplyOverrides returned error: %v", err)
	}
	if got := GroomConcurrency(); got != 1 {
		t.Fatalf("expected CLI override to set concurrency=1, got %d", got)
	}
}

func TestInitializeRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"backend":   "overlay:\n  backend: redis\n",
		"serverURL": "server:\n  url: ftp://example\n",
	}
	for name, contents := range cases {
		t.Run(name, func(t *testing.T) {
			reset()
			t.Cleanup(reset)
			tmp := t.TempDir()
			projectCfg := filepath.Join(tmp, ".scrummaster", "config.yaml")
			writeFile(t, projectCfg, contents)
			err := Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "user.yaml")))
			if err == nil {
				t.Fatalf("expected Initialize to reject %q", contents)
			}
		})
	}
}

func TestOverlayPathDefaultsPerBackend(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "user.yaml"))); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	path, err := OverlayPath()
	if err != nil {
		t.Fatalf("OverlayPath returned error: %v", err)
	}
	if filepath.Base(path) != "overlay.db" {
		t.Fatalf("expected sqlite default overlay.db, got %q", path)
	}

	if err := Set(KeyOverlayPath, "/tmp/custom-overlay"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	path, err = OverlayPath()
	if err != nil {
		t.Fatalf("OverlayPath returned error: %v", err)
	}
	if path != "/tmp/custom-overlay" {
		t.Fatalf("expected explicit overlay path, got %q", path)
	}
}

func TestSaveThemeWritesUserConfig(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	userCfg := filepath.Join(tmp, "home", "config.yaml")
	userConfigPathOverride = userCfg

	if err := SaveTheme("dracula"); err != nil {
		t.Fatalf("SaveTheme returned error: %v", err)
	}
	data, err := os.ReadFile(userCfg)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if got := string(data); !strings.Contains(got, "theme: dracula") {
		t.Fatalf("unexpected saved config %q", got)
	}
}

func mustMkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	mustMkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}
