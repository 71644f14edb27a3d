package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRunRejectsUnknownFlag(t *testing.T) {
	require.Equal(t, 2, run([]string{"-nope"}))
}

func TestRunInvalidConfig(t *testing.T) {
	t.Setenv("HEIMER_CONFIG", "")
	path := writeConfig(t, "[store]\nbackend = \"tape\"\n")
	require.Equal(t, 1, run([]string{"-config", path}))
}

func TestRunReportsStartupFailureThroughLog(t *testing.T) {
	t.Setenv("HEIMER_CONFIG", "")
	dir := t.TempDir()
	logPath := filepath.Join(dir, "heimer.log")
	// A directory where the settings file should be cannot be read.
	settingsPath := filepath.Join(dir, "settings")
	require.NoError(t, os.Mkdir(settingsPath, 0o755))

	path := writeConfig(t, fmt.Sprintf(`[store]
backend = "memory"

[settings]
path = %q

[log]
path = %q
level = "debug"
`, settingsPath, logPath))

	require.Equal(t, 1, run([]string{"-config", path}))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "backend ready")
	require.Contains(t, string(data), "load settings")
}
