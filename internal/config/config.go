// internal/config/config.go
//
// This package handles configuration and the .auditoria directory structure.
// Every directory the client is started from gets a .auditoria/ folder with
// the client config and the session log.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppDir is the name of the directory we create in the working directory
	AppDir = ".auditoria"

	// DefaultBaseURL is where the Audit Service listens in development.
	DefaultBaseURL = "http://localhost:5000"

	defaultLogLevel = "info"
)

const defaultProjectConfigYAML = `# auditoria client configuration
version: 1

service:
  # Base URL of the Audit Service; uploads go to {base_url}/api/upload.
  base_url: http://localhost:5000
  # Maximum time to wait for an audit. 0 waits indefinitely.
  upload_timeout: 0s

picker:
  # Directory the file picker opens in. Relative paths resolve against the
  # directory the client was started from.
  start_dir: .
  show_hidden: false

logging:
  level: info
`

// ServiceConfig locates the Audit Service.
type ServiceConfig struct {
	BaseURL       string        `yaml:"base_url"`
	UploadTimeout time.Duration `yaml:"upload_timeout,omitempty"`
}

// PickerConfig customizes the file picker.
type PickerConfig struct {
	StartDir   string `yaml:"start_dir,omitempty"`
	ShowHidden bool   `yaml:"show_hidden,omitempty"`
}

// LoggingConfig controls the session log.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ProjectConfig models .auditoria/config.yaml.
type ProjectConfig struct {
	Version int           `yaml:"version"`
	Service ServiceConfig `yaml:"service"`
	Picker  PickerConfig  `yaml:"picker"`
	Logging LoggingConfig `yaml:"logging"`
}

// Config holds the runtime configuration for the client.
type Config struct {
	// ProjectDir is the directory where the user ran `auditoria` from
	ProjectDir string

	// AppProjectDir is ProjectDir/.auditoria
	AppProjectDir string

	Project ProjectConfig
}

// InitAppDir creates the .auditoria directory structure in projectDir.
//
// Structure created:
// .auditoria/
// ├── config.yaml
// └── logs/
func InitAppDir(projectDir string) error {
	appDir := filepath.Join(projectDir, AppDir)
	if err := os.MkdirAll(filepath.Join(appDir, "logs"), 0o755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(appDir, "config.yaml"))
}

// NewConfig loads .auditoria/config.yaml (if present), applies AUDITORIA_*
// environment overrides and validates the result.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:    projectDir,
		AppProjectDir: filepath.Join(projectDir, AppDir),
		Project:       defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := cfg.Project.applyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.Project.normalize(projectDir)
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.AppProjectDir, "logs")
}

// LogPath returns the session log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "auditoria.log")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.AppProjectDir, "config.yaml")
}

// BaseURL returns the Audit Service base URL.
func (c *Config) BaseURL() string {
	return c.Project.Service.BaseURL
}

// UploadTimeout returns the per-upload bound; zero means none.
func (c *Config) UploadTimeout() time.Duration {
	return c.Project.Service.UploadTimeout
}

// StartDir returns the absolute directory the picker opens in.
func (c *Config) StartDir() string {
	return c.Project.Picker.StartDir
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() string {
	return c.Project.Logging.Level
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Service: ServiceConfig{BaseURL: DefaultBaseURL},
		Picker:  PickerConfig{StartDir: "."},
		Logging: LoggingConfig{Level: defaultLogLevel},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Service.BaseURL) == "" {
		pc.Service.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(pc.Logging.Level) == "" {
		pc.Logging.Level = defaultLogLevel
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Service.BaseURL = strings.TrimRight(strings.TrimSpace(pc.Service.BaseURL), "/")
	pc.Logging.Level = strings.ToLower(strings.TrimSpace(pc.Logging.Level))
	if pc.Logging.Level == "warning" {
		pc.Logging.Level = "warn"
	}
	pc.Picker.StartDir = resolvePath(base, pc.Picker.StartDir)
	if pc.Picker.StartDir == "" {
		pc.Picker.StartDir = filepath.Clean(base)
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	u, err := url.Parse(pc.Service.BaseURL)
	if err != nil {
		return fmt.Errorf("service.base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("service.base_url must be an http(s) URL, got %q", pc.Service.BaseURL)
	}
	if pc.Service.UploadTimeout < 0 {
		return fmt.Errorf("service.upload_timeout must be >= 0")
	}
	switch pc.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", pc.Logging.Level)
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
