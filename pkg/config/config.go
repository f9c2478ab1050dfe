package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

const (
	xdgAppName = "taskmenu"
	configFile = "config.yaml"
)

// Candidate file names, in lookup order.
var configFiles = []string{"config.yaml", "config.yml", "config.json"}

type MenuConfig struct {
	Backend   string   `json:"backend" yaml:"backend"`
	RofiArgs  []string `json:"rofi_args,omitempty" yaml:"rofi_args,omitempty"`
	DmenuArgs []string `json:"dmenu_args,omitempty" yaml:"dmenu_args,omitempty"`
}

type LogConfig struct {
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
	Level string `json:"level" yaml:"level"`
}

type Config struct {
	TaskBin          string     `json:"task_bin" yaml:"task_bin"`
	Menu             MenuConfig `json:"menu" yaml:"menu"`
	DescriptionWidth int        `json:"description_width" yaml:"description_width"`
	WaitSuggestions  []string   `json:"wait_suggestions" yaml:"wait_suggestions"`
	// Calendar is the Google Calendar name used by the Schedule action.
	// Empty disables it.
	Calendar string    `json:"calendar,omitempty" yaml:"calendar,omitempty"`
	Log      LogConfig `json:"log" yaml:"log"`
}

func Default() *Config {
	return &Config{
		TaskBin:          "task",
		Menu:             MenuConfig{Backend: "rofi"},
		DescriptionWidth: 60,
		WaitSuggestions:  []string{"tomorrow", "1h", "2h", "4h", "monday"},
		Log:              LogConfig{Level: "info"},
	}
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	switch c.Menu.Backend {
	case "rofi", "dmenu", "terminal":
	default:
		return fmt.Errorf("unknown menu backend %q (want rofi, dmenu or terminal)", c.Menu.Backend)
	}
	if c.DescriptionWidth < 10 {
		return fmt.Errorf("description_width must be at least 10, got %d", c.DescriptionWidth)
	}
	if c.TaskBin == "" {
		return fmt.Errorf("task_bin must not be empty")
	}
	return nil
}

// GetConfigDir returns $XDG_CONFIG_HOME/taskmenu, falling back to
// ~/.config/taskmenu.
func GetConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, xdgAppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

// GetConfigPath returns the first existing config file in the config
// directory, or the default YAML path when none exists.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	for _, name := range configFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config at path, or the default location when path is
// empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if isJSON(path) {
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Marshal encodes the config as YAML, or JSON when path ends in .json.
func Marshal(cfg *Config, path string) ([]byte, error) {
	if isJSON(path) {
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
	return yaml.Marshal(cfg)
}

func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	b, err := Marshal(cfg, path)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, b, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
