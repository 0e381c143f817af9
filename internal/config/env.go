package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override .auditoria/config.yaml.
const (
	EnvBaseURL       = "AUDITORIA_BASE_URL"
	EnvUploadTimeout = "AUDITORIA_UPLOAD_TIMEOUT"
	EnvStartDir      = "AUDITORIA_START_DIR"
	EnvLogLevel      = "AUDITORIA_LOG_LEVEL"
)

// LoadDotEnv loads projectDir/.env into the process environment. Variables
// already set win. A missing file is not an error.
func LoadDotEnv(projectDir string) error {
	path := filepath.Join(projectDir, ".env")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func (pc *ProjectConfig) applyEnvOverrides() error {
	if pc == nil {
		return nil
	}
	if value := strings.TrimSpace(os.Getenv(EnvBaseURL)); value != "" {
		pc.Service.BaseURL = value
	}
	if value := strings.TrimSpace(os.Getenv(EnvUploadTimeout)); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvUploadTimeout, err)
		}
		pc.Service.UploadTimeout = d
	}
	if value := strings.TrimSpace(os.Getenv(EnvStartDir)); value != "" {
		pc.Picker.StartDir = value
	}
	if value := strings.TrimSpace(os.Getenv(EnvLogLevel)); value != "" {
		pc.Logging.Level = value
	}
	return nil
}
