package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HEIMER_CONFIG", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	require.Equal(t, "file", cfg.Store.Backend)
	require.Equal(t, ".heimer", cfg.Editor.Extension)
	require.Equal(t, "New file", cfg.Editor.Untitled)
	require.Equal(t, 1000, cfg.Editor.HistoryLimit)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "MainWindow", cfg.Settings.Group)
	require.Equal(t, "mindmaps", cfg.Store.FirestoreCollection)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "Heimer"), cfg.Store.Dir)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[store]
backend = "sqlite"
sqlite_path = "/var/lib/heimer/maps.db"

[editor]
history_limit = 50
`), 0o644))
	t.Setenv("HEIMER_SERVER_ADDR", "127.0.0.1:9000")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.Store.Backend)
	require.Equal(t, "/var/lib/heimer/maps.db", cfg.Store.SQLitePath)
	require.Equal(t, 50, cfg.Editor.HistoryLimit)
	require.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"HEIMER_STORE_BACKEND": "s3"}},
		{"firestore without project", map[string]string{"HEIMER_STORE_BACKEND": "firestore"}},
		{"extension without dot", map[string]string{"HEIMER_EDITOR_EXTENSION": "heimer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
			require.Error(t, err)
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.toml")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	cfg.Store.Backend = "memory"
	cfg.Editor.Untitled = "Untitled map"

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}
