// Package settings persists per-user editor state between runs: the
// directory of the last opened or saved map and the window size.
package settings

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Size is a window size in the front end's units (cells for the TUI).
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Group is one named section of the settings file.
type Group struct {
	Recent string `yaml:"recentPath,omitempty"`
	Size   *Size  `yaml:"size,omitempty"`

	store *Store
}

type fileFormat struct {
	Groups map[string]*Group `yaml:"groups"`
}

// Store is a YAML settings file split into groups.
type Store struct {
	path   string
	home   string
	groups map[string]*Group
	log    *slog.Logger
}

// Load reads the settings file at path. A missing file yields empty
// settings; it is created on the first Save.
func Load(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	home, _ := os.UserHomeDir()
	s := &Store{path: path, home: home, groups: make(map[string]*Group), log: log}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	for name, g := range f.Groups {
		if g == nil {
			continue
		}
		g.store = s
		s.groups[name] = g
	}
	return s, nil
}

// Group returns the named group, creating it if needed.
func (s *Store) Group(name string) *Group {
	g, ok := s.groups[name]
	if !ok {
		g = &Group{store: s}
		s.groups[name] = g
	}
	return g
}

// Save writes all groups to disk. A Store loaded with an empty path keeps
// its settings in memory only.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("settings: mkdir: %w", err)
	}
	data, err := yaml.Marshal(fileFormat{Groups: s.groups})
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("settings: write %s: %w", s.path, err)
	}
	return nil
}

// RecentPath returns the last opened or saved path, or the home directory.
func (g *Group) RecentPath() string {
	if g.Recent != "" {
		return g.Recent
	}
	return g.store.home
}

// SetRecentPath records path and writes the settings file immediately.
func (g *Group) SetRecentPath(path string) {
	g.Recent = path
	g.persist()
}

// WindowSize returns the stored size, or fallback when none was stored.
func (g *Group) WindowSize(fallback Size) Size {
	if g.Size == nil || g.Size.Width <= 0 || g.Size.Height <= 0 {
		return fallback
	}
	return *g.Size
}

// SetWindowSize records the window size and writes the settings file.
func (g *Group) SetWindowSize(sz Size) {
	g.Size = &sz
	g.persist()
}

func (g *Group) persist() {
	if err := g.store.Save(); err != nil {
		g.store.log.Warn("settings not saved", "err", err)
	}
}
