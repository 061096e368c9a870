package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Base schema - new rows use Snowflake IDs; rows adopted from an older
// AUTOINCREMENT table keep their small integer IDs and sort first.
const baseSchema = `
CREATE TABLE IF NOT EXISTS translations (
  id INTEGER PRIMARY KEY,
  title TEXT,
  source_text TEXT,
  style TEXT,
  model TEXT,
  translation TEXT,
  notes TEXT,
  status TEXT
);

CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("migrate base schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func runMigrations(db *sql.DB) error {
	// Migration 1: timestamps on translations (legacy archives have none)
	for _, column := range []string{"created_at", "updated_at"} {
		if err := addColumnIfMissing(db, "translations", column, "TEXT"); err != nil {
			return err
		}
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := db.Exec(`UPDATE translations SET created_at = ? WHERE created_at IS NULL OR created_at = ''`, now); err != nil {
		return fmt.Errorf("backfill created_at: %w", err)
	}
	if _, err := db.Exec(`UPDATE translations SET updated_at = created_at WHERE updated_at IS NULL OR updated_at = ''`); err != nil {
		return fmt.Errorf("backfill updated_at: %w", err)
	}

	// Migration 2: normalize legacy status labels and empty titles
	if _, err := db.Exec(`UPDATE translations SET title = 'Untitled' WHERE title IS NULL OR trim(title) = ''`); err != nil {
		return fmt.Errorf("backfill title: %w", err)
	}
	if _, err := db.Exec(`UPDATE translations SET status = 'draft' WHERE status IS NULL OR status = '' OR status = 'مسوّدة'`); err != nil {
		return fmt.Errorf("backfill status draft: %w", err)
	}
	legacyStatus := map[string]string{
		"بحاجة تنقيح": "needs_revision",
		"جيدة":        "good",
		"نهائية":      "final",
	}
	for label, status := range legacyStatus {
		if _, err := db.Exec(`UPDATE translations SET status = ? WHERE status = ?`, status, label); err != nil {
			return fmt.Errorf("backfill status %s: %w", status, err)
		}
	}

	// Migration 3: group index for deduplication
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_translations_dedupe ON translations(title, source_text, translation)`); err != nil {
		return fmt.Errorf("create idx_translations_dedupe: %w", err)
	}

	return nil
}

func addColumnIfMissing(db *sql.DB, table, column, typ string) error {
	var count int
	err := db.QueryRow(
		fmt.Sprintf(`SELECT COUNT(*) FROM pragma_table_info('%s') WHERE name = ?`, table),
		column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("check %s column: %w", column, err)
	}
	if count > 0 {
		return nil
	}
	if _, err := db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, typ)); err != nil {
		return fmt.Errorf("add %s column: %w", column, err)
	}
	return nil
}
