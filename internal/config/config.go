// Package config loads mro settings.
//
// Settings come from, in increasing precedence: built-in defaults, the global
// config.yml in Dir(), the project's .mro.yml, and MRO_* environment
// variables. Env files (.env.local, .env, and Dir()/env) are loaded first and
// never override variables that are already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// File names.
const (
	ProjectFile = ".mro.yml"
	GlobalFile  = "config.yml"
	GlobalEnv   = "env"
)

// Config holds the resolved settings.
type Config struct {
	Manifest        string `yaml:"manifest" validate:"required"`
	Changelog       string `yaml:"changelog" validate:"required"`
	CIScript        string `yaml:"ci_script" validate:"required"`
	NPM             string `yaml:"npm" validate:"required"`
	Git             string `yaml:"git" validate:"required"`
	Remote          string `yaml:"remote" validate:"required"`
	Branch          string `yaml:"branch" validate:"required"`
	CommitLimit     int    `yaml:"commit_limit" validate:"gt=0"`
	PublishReminder bool   `yaml:"publish_reminder"`
	Color           string `yaml:"color" validate:"oneof=auto always never"`
	Debug           bool   `yaml:"debug"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Manifest:        "package.json",
		Changelog:       "CHANGELOG.md",
		CIScript:        "ci",
		NPM:             "npm",
		Git:             "git",
		Remote:          "origin",
		Branch:          "main",
		CommitLimit:     10,
		PublishReminder: true,
		Color:           "auto",
	}
}

// Load resolves the configuration for the project at root using the global
// directory from Dir().
func Load(root string) (*Config, error) {
	return LoadFrom(root, Dir())
}

// LoadFrom resolves the configuration for root with an explicit global
// directory. An empty globalDir skips global files.
func LoadFrom(root, globalDir string) (*Config, error) {
	if err := LoadEnvFiles(root, globalDir); err != nil {
		return nil, err
	}

	cfg := Default()
	if globalDir != "" {
		if err := mergeFile(cfg, filepath.Join(globalDir, GlobalFile)); err != nil {
			return nil, err
		}
	}
	if err := mergeFile(cfg, filepath.Join(root, ProjectFile)); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFiles loads the project and global env files that exist. Earlier
// files win, and variables already in the environment are never replaced.
func LoadEnvFiles(root, globalDir string) error {
	candidates := []string{
		filepath.Join(root, ".env.local"),
		filepath.Join(root, ".env"),
	}
	if globalDir != "" {
		candidates = append(candidates, filepath.Join(globalDir, GlobalEnv))
	}

	var existing []string
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("loading env files: %w", err)
	}
	return nil
}

// mergeFile overlays the keys present in a YAML file onto cfg. A missing
// file is not an error.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"MRO_MANIFEST":  &c.Manifest,
		"MRO_CHANGELOG": &c.Changelog,
		"MRO_CI_SCRIPT": &c.CIScript,
		"MRO_NPM":       &c.NPM,
		"MRO_GIT":       &c.Git,
	}
	for key, field := range overrides {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*field = v
		}
	}

	if v := strings.TrimSpace(os.Getenv("MRO_DEBUG")); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MRO_DEBUG: %w", err)
		}
		c.Debug = debug
	}
	return nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		return name
	})

	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
