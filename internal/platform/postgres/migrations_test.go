package postgres

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	for _, e := range entries {
		content, err := fs.ReadFile(migrationsFS, migrationsDir+"/"+e.Name())
		require.NoError(t, err)
		assert.Contains(t, string(content), "-- +goose Up", e.Name())
		assert.Contains(t, string(content), "-- +goose Down", e.Name())
	}
}

func TestMigrationsDeclareCascade(t *testing.T) {
	content, err := fs.ReadFile(migrationsFS, migrationsDir+"/20250101000002_create_review_logs_table.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), "ON DELETE CASCADE"))

	content, err = fs.ReadFile(migrationsFS, migrationsDir+"/20250101000004_create_packs_tables.sql")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(content), "ON DELETE CASCADE"), "pack links follow both packs and vocabs")
}

func TestMigrateUnknownCommand(t *testing.T) {
	err := Migrate(context.Background(), nil, "sideways", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}
