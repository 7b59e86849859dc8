package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add meter readings table", "add_meter_readings_table"},
		{"Add-Meter-Readings", "add_meter_readings"},
		{"ADD_METER_READINGS", "add_meter_readings"},
		{"add__meter__readings", "add_meter_readings"},
		{"Add Rooms 123", "add_rooms_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	tmpDir := t.TempDir()

	mf, err := CreateMigration(tmpDir, "add meter readings", "Track per-room meter readings")
	require.NoError(t, err)
	require.NotNil(t, mf)

	// Version is a sortable YYYYMMDDHHMMSS timestamp
	assert.Len(t, mf.Version, 14)

	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase)
	assert.Equal(t, mf.Version+"_add_meter_readings", upBase)

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "-- Migration: add meter readings")
	assert.Contains(t, string(upContent), "-- Description: Track per-room meter readings")
	assert.Contains(t, string(upContent), "UP migration SQL")

	downContent, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(downContent), "(rollback)")
	assert.Contains(t, string(downContent), "DOWN migration SQL")
}

func TestCreateMigration_OmitsEmptyDescription(t *testing.T) {
	tmpDir := t.TempDir()

	mf, err := CreateMigration(tmpDir, "add rooms", "")
	require.NoError(t, err)

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.NotContains(t, string(upContent), "-- Description:")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "migrations")

	mf, err := CreateMigration(nestedPath, "init", "initial schema")
	require.NoError(t, err)
	require.NotNil(t, mf)

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		"000001_create_property_tables.up.sql",
		"000001_create_property_tables.down.sql",
		"000002_create_billing_tables.up.sql",
		"000002_create_billing_tables.down.sql",
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, f), []byte("-- test"), 0o644))
	}

	migrations, err := ListMigrations(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"000001_create_property_tables",
		"000002_create_billing_tables",
	}, migrations)
}

func TestListMigrations_EmptyDirectory(t *testing.T) {
	migrations, err := ListMigrations(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	migrations, err := ListMigrations("/nonexistent/path/to/migrations")
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_IgnoresOtherFiles(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		"000001_init.up.sql",
		"000001_init.down.sql",
		"README.md",
		".gitkeep",
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, f), []byte("test"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, "archive.up.sql"), 0o755))

	migrations, err := ListMigrations(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init"}, migrations)
}
