package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mutarjim/internal/db"
	"mutarjim/internal/model"
	"mutarjim/internal/snowflake"
)

// NewTestDB opens a migrated archive in a per-test temp directory.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// SeedTranslation inserts a row directly. A zero ID gets a snowflake ID;
// empty Title and Status fall back to the store defaults.
func SeedTranslation(t *testing.T, database *sql.DB, tr model.Translation) int64 {
	t.Helper()
	if tr.ID == 0 {
		tr.ID = snowflake.NextID()
	}
	if tr.Title == "" {
		tr.Title = model.DefaultTitle
	}
	if tr.Status == "" {
		tr.Status = model.StatusDraft
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := database.Exec(
		`INSERT INTO translations (id, title, source_text, style, model, translation, notes, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tr.ID, tr.Title, tr.SourceText, tr.Style, tr.Model, tr.Translation, tr.Notes, string(tr.Status), now, now,
	)
	require.NoError(t, err)
	return tr.ID
}
