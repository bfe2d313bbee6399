package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the fields Boardwalk needs to reach the board service
// and keep its local cache.
type Config struct {
	APIBase    string
	TokenPath  string
	CachePath  string
	FlushDelay time.Duration
	LogPath    string
}

const (
	defaultConfigPath = "~/.config/boardwalk/config.toml"
	defaultAPIBase    = "https://trello.testserverwebsite.com"
	defaultCachePath  = "~/.local/share/boardwalk/cache.sqlite"
	defaultLogPath    = "~/.local/share/boardwalk/boardwalk.log"
	defaultFlushMS    = 400
)

// Load locates and parses the boardwalk config, falling back to defaults
// when the file is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase   string `toml:"api_base"`
		TokenPath string `toml:"token_path"`
		CachePath string `toml:"cache_path"`
		LogPath   string `toml:"log_path"`
		FlushMS   int    `toml:"flush_ms"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = v
	}
	if v := strings.TrimSpace(raw.TokenPath); v != "" {
		cfg.TokenPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.CachePath); v != "" {
		cfg.CachePath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogPath); v != "" {
		cfg.LogPath = mustExpand(v)
	}
	if raw.FlushMS > 0 {
		cfg.FlushDelay = time.Duration(raw.FlushMS) * time.Millisecond
	}

	return cfg, nil
}

func defaults() Config {
	return Config{
		APIBase:    defaultAPIBase,
		TokenPath:  "", // auth package applies its own default
		CachePath:  mustExpand(defaultCachePath),
		LogPath:    mustExpand(defaultLogPath),
		FlushDelay: defaultFlushMS * time.Millisecond,
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
