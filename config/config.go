// Package config loads editor configuration from an optional TOML file and
// HEIMER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Store    StoreConfig
	Editor   EditorConfig
	Server   ServerConfig
	Settings SettingsConfig
	Log      LogConfig
}

// StoreConfig selects where documents are persisted.
type StoreConfig struct {
	Backend             string // file | memory | sqlite | firestore
	SQLitePath          string `mapstructure:"sqlite_path"`
	FirestoreProject    string `mapstructure:"firestore_project"`
	FirestoreCollection string `mapstructure:"firestore_collection"`
	Cache               bool
	// Dir is where the file backend looks when listing documents. It
	// defaults to ~/Heimer so a listing never walks the whole home.
	Dir string
}

// EditorConfig holds document lifecycle settings.
type EditorConfig struct {
	Extension    string
	HistoryLimit int `mapstructure:"history_limit"`
	Untitled     string
}

// ServerConfig holds the WebSocket front end settings.
type ServerConfig struct {
	Addr string
}

// SettingsConfig locates the per-user settings file.
type SettingsConfig struct {
	Path  string
	Group string
}

// LogConfig holds logging settings. An empty path disables logging.
type LogConfig struct {
	Path  string
	Level string
}

// appDir is the folder under the home directory where maps are listed from.
const appDir = "Heimer"

// Backends lists the accepted values of store.backend.
var Backends = []string{"file", "memory", "sqlite", "firestore"}

func configDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "heimer")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "heimer")
}

func defaults(v *viper.Viper) {
	dir := configDir()
	home, _ := os.UserHomeDir()
	v.SetDefault("store.backend", "file")
	v.SetDefault("store.sqlite_path", filepath.Join(dir, "maps.db"))
	v.SetDefault("store.firestore_project", "")
	v.SetDefault("store.firestore_collection", "mindmaps")
	v.SetDefault("store.cache", false)
	v.SetDefault("store.dir", filepath.Join(home, appDir))
	v.SetDefault("editor.extension", ".heimer")
	v.SetDefault("editor.history_limit", 1000)
	v.SetDefault("editor.untitled", "New file")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("settings.path", filepath.Join(dir, "settings.yaml"))
	v.SetDefault("settings.group", "MainWindow")
	v.SetDefault("log.path", filepath.Join(dir, "heimer.log"))
	v.SetDefault("log.level", "info")
}

// Load reads configuration from path (or $HEIMER_CONFIG, or the default
// config directory) and the environment. Env var overrides use prefix HEIMER_.
// A missing config file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	defaults(v)

	v.SetConfigType("toml")
	if path == "" {
		path = os.Getenv("HEIMER_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(configDir())
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("HEIMER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	known := false
	for _, b := range Backends {
		if c.Store.Backend == b {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("config: unknown store.backend %q (want one of %s)", c.Store.Backend, strings.Join(Backends, ", "))
	}
	if c.Store.Backend == "firestore" && c.Store.FirestoreProject == "" {
		return fmt.Errorf("config: store.firestore_project is required for the firestore backend")
	}
	if !strings.HasPrefix(c.Editor.Extension, ".") || len(c.Editor.Extension) < 2 {
		return fmt.Errorf("config: editor.extension %q must start with a dot", c.Editor.Extension)
	}
	if c.Editor.HistoryLimit < 0 {
		return fmt.Errorf("config: editor.history_limit must not be negative")
	}
	return nil
}

// Save writes cfg as TOML to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("store.backend", cfg.Store.Backend)
	v.Set("store.sqlite_path", cfg.Store.SQLitePath)
	v.Set("store.firestore_project", cfg.Store.FirestoreProject)
	v.Set("store.firestore_collection", cfg.Store.FirestoreCollection)
	v.Set("store.cache", cfg.Store.Cache)
	v.Set("store.dir", cfg.Store.Dir)
	v.Set("editor.extension", cfg.Editor.Extension)
	v.Set("editor.history_limit", cfg.Editor.HistoryLimit)
	v.Set("editor.untitled", cfg.Editor.Untitled)
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("settings.path", cfg.Settings.Path)
	v.Set("settings.group", cfg.Settings.Group)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
