package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the project config file searched for by Discover.
const FileName = ".surveyforge.yml"

// ErrNotFound is returned by FindConfigPath when no file exists up to the root.
var ErrNotFound = errors.New("config file not found")

// FindConfigPath searches upward from a directory for the config file.
func FindConfigPath(startDir string) (string, error) {
	dir := strings.TrimSpace(startDir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}
	dir = abs

	for {
		configPath := filepath.Join(dir, FileName)
		info, err := os.Stat(configPath)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config path %q is a directory", configPath)
			}
			return configPath, nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("stat config path %q: %w", configPath, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s in %s or parent directories: %w", FileName, abs, ErrNotFound)
		}
		dir = parent
	}
}

// Discover loads the explicit path when given, else the nearest config file
// above startDir, else the defaults. The returned path is empty for defaults.
func Discover(explicit, startDir string) (Config, string, error) {
	if strings.TrimSpace(explicit) != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	path, err := FindConfigPath(startDir)
	if errors.Is(err, ErrNotFound) {
		return Default(), "", nil
	}
	if err != nil {
		return Config{}, "", err
	}
	cfg, err := Load(path)
	return cfg, path, err
}
