// Package config loads application configuration from environment
// variables. All variables use the STUDYLOOP_ prefix.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Workspace WorkspaceConfig
	Grader    GraderConfig
	Data      DataConfig
	Log       LogConfig
	StudyPath string
}

// WorkspaceConfig holds workspace API settings.
type WorkspaceConfig struct {
	Token   string
	BaseURL string // empty means the production API
}

// GraderConfig holds settings for the answer-grading API
// (OpenAI-compatible; DeepSeek by default).
type GraderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// DataConfig holds local file locations.
type DataConfig struct {
	Dir      string // collection dumps and the catalog file
	ModelDir string // derived property models
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with STUDYLOOP_
// prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Workspace: WorkspaceConfig{
			Token:   envStr("STUDYLOOP_WORKSPACE_TOKEN", ""),
			BaseURL: envStr("STUDYLOOP_WORKSPACE_BASE_URL", ""),
		},
		Grader: GraderConfig{
			APIKey:  envStr("STUDYLOOP_GRADER_API_KEY", ""),
			BaseURL: envStr("STUDYLOOP_GRADER_BASE_URL", ""),
			Model:   envStr("STUDYLOOP_GRADER_MODEL", ""),
		},
		Data: DataConfig{
			Dir:      envStr("STUDYLOOP_DATA_DIR", "./data"),
			ModelDir: envStr("STUDYLOOP_MODEL_DIR", "./model"),
		},
		Log: LogConfig{
			Level:  envStr("STUDYLOOP_LOG_LEVEL", "info"),
			Format: envStr("STUDYLOOP_LOG_FORMAT", "text"),
		},
		StudyPath: envStr("STUDYLOOP_STUDY_FILE", "./study.yaml"),
	}
	return cfg, nil
}

// Validate checks that required configuration is present. Commands that
// touch the workspace cannot run without a token.
func (c *Config) Validate() error {
	if c.Workspace.Token == "" {
		return fmt.Errorf("STUDYLOOP_WORKSPACE_TOKEN is required")
	}
	return nil
}

// CatalogPath is the location of the collection title→id catalog file.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.Data.Dir, "collection_ids.json")
}

// NewLogger builds the process logger from the log settings.
func NewLogger(cfg LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
