package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeProjectConfig(t *testing.T, projectDir, body string) {
	t.Helper()
	appDir := filepath.Join(projectDir, AppDir)
	if err := os.MkdirAll(appDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(appDir, "config.yaml"), []byte(strings.TrimSpace(body)), 0644); err != nil {
		t.Fatal(err)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvBaseURL, EnvUploadTimeout, EnvStartDir, EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func TestNewConfigDefaultsWhenMissing(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if c.BaseURL() != DefaultBaseURL {
		t.Fatalf("expected base url %q, got %q", DefaultBaseURL, c.BaseURL())
	}
	if c.UploadTimeout() != 0 {
		t.Fatalf("expected no upload timeout, got %s", c.UploadTimeout())
	}
	if c.StartDir() != filepath.Clean(projectDir) {
		t.Fatalf("expected start dir %q, got %q", projectDir, c.StartDir())
	}
	if c.LogLevel() != "info" {
		t.Fatalf("expected info log level, got %q", c.LogLevel())
	}
	if c.LogPath() != filepath.Join(projectDir, AppDir, "logs", "auditoria.log") {
		t.Fatalf("unexpected log path %q", c.LogPath())
	}
}

func TestNewConfigParsesYaml(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	writeProjectConfig(t, projectDir, `
version: 1
service:
  base_url: "https://auditoria.example.com/ "
  upload_timeout: 90s
picker:
  start_dir: contas
  show_hidden: true
logging:
  level: WARNING
`)
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.BaseURL() != "https://auditoria.example.com" {
		t.Fatalf("expected trimmed base url, got %q", c.BaseURL())
	}
	if c.UploadTimeout() != 90*time.Second {
		t.Fatalf("expected 90s timeout, got %s", c.UploadTimeout())
	}
	if c.StartDir() != filepath.Join(projectDir, "contas") {
		t.Fatalf("expected start dir resolved against project, got %q", c.StartDir())
	}
	if !c.Project.Picker.ShowHidden {
		t.Fatalf("expected show_hidden to be parsed")
	}
	if c.LogLevel() != "warn" {
		t.Fatalf("expected warn level, got %q", c.LogLevel())
	}
}

func TestNewConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	writeProjectConfig(t, projectDir, `
service:
  base_url: http://from-file:5000
`)
	startDir := t.TempDir()
	t.Setenv(EnvBaseURL, "http://from-env:8080/")
	t.Setenv(EnvUploadTimeout, "2m")
	t.Setenv(EnvStartDir, startDir)
	t.Setenv(EnvLogLevel, "debug")

	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.BaseURL() != "http://from-env:8080" {
		t.Fatalf("expected env base url, got %q", c.BaseURL())
	}
	if c.UploadTimeout() != 2*time.Minute {
		t.Fatalf("expected env timeout, got %s", c.UploadTimeout())
	}
	if c.StartDir() != filepath.Clean(startDir) {
		t.Fatalf("expected env start dir, got %q", c.StartDir())
	}
	if c.LogLevel() != "debug" {
		t.Fatalf("expected env log level, got %q", c.LogLevel())
	}
}

func TestNewConfigRejectsBadTimeoutEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvUploadTimeout, "soon")
	if _, err := NewConfig(t.TempDir()); err == nil {
		t.Fatalf("expected invalid %s to fail", EnvUploadTimeout)
	}
}

func TestNewConfigValidation(t *testing.T) {
	cases := map[string]string{
		"scheme":   "service:\n  base_url: ftp://host",
		"no host":  "service:\n  base_url: http://",
		"timeout":  "service:\n  upload_timeout: -5s",
		"level":    "logging:\n  level: verbose",
		"bad yaml": "service: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			projectDir := t.TempDir()
			writeProjectConfig(t, projectDir, body)
			if _, err := NewConfig(projectDir); err == nil {
				t.Fatalf("expected config %q to be rejected", body)
			}
		})
	}
}

func TestInitAppDirWritesDefaultsOnce(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	if err := InitAppDir(projectDir); err != nil {
		t.Fatalf("InitAppDir returned error: %v", err)
	}
	if info, err := os.Stat(filepath.Join(projectDir, AppDir, "logs")); err != nil || !info.IsDir() {
		t.Fatalf("expected logs dir, err=%v", err)
	}
	path := filepath.Join(projectDir, AppDir, "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read default config: %v", err)
	}
	if !strings.Contains(string(data), "base_url: http://localhost:5000") {
		t.Fatalf("default config missing base url:\n%s", data)
	}
	if _, err := NewConfig(projectDir); err != nil {
		t.Fatalf("default config should load: %v", err)
	}

	if err := os.WriteFile(path, []byte("version: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := InitAppDir(projectDir); err != nil {
		t.Fatalf("second InitAppDir returned error: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "version: 2\n" {
		t.Fatalf("InitAppDir overwrote existing config: %q", data)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	if err := LoadDotEnv(projectDir); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}
	env := EnvBaseURL + "=http://dotenv:5000\n"
	if err := os.WriteFile(filepath.Join(projectDir, ".env"), []byte(env), 0644); err != nil {
		t.Fatal(err)
	}
	os.Unsetenv(EnvBaseURL)
	if err := LoadDotEnv(projectDir); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.BaseURL() != "http://dotenv:5000" {
		t.Fatalf("expected base url from .env, got %q", c.BaseURL())
	}
}
