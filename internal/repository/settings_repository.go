package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"mutarjim/internal/model"
)

//go:generate mockgen -source=settings_repository.go -destination=mock/settings_repository.go -package=mock

// KeyExcelImported marks the archive as seeded from the spreadsheet. Its
// value is the RFC3339 time of the import.
const KeyExcelImported = "import.excel_done"

// SettingsRepository is the archive's key/value table. It holds the AI
// overrides, the exemplar budget and the import marker.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (*model.Setting, error)
	Set(ctx context.Context, key, value string) error
	GetByPrefix(ctx context.Context, prefix string) ([]model.Setting, error)
	Delete(ctx context.Context, key string) error
	// GetInt reports false when key is unset.
	GetInt(ctx context.Context, key string) (int, bool, error)
	SetInt(ctx context.Context, key string, value int) error
	// ImportedAt reports when the spreadsheet seed ran, false if never.
	ImportedAt(ctx context.Context) (time.Time, bool, error)
	MarkImported(ctx context.Context, at time.Time) error
}

type settingsRepository struct {
	db dbtx
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db dbtx) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get retrieves a setting by key. A missing key yields (nil, nil).
func (r *settingsRepository) Get(ctx context.Context, key string) (*model.Setting, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT key, value, updated_at FROM settings WHERE key = ?
	`, key)

	var s model.Setting
	var updatedAt string
	if err := row.Scan(&s.Key, &s.Value, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	s.UpdatedAt, _ = parseTime(updatedAt)
	return &s, nil
}

// Set creates or updates a setting.
func (r *settingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, formatTime(time.Now()))
	return err
}

// GetByPrefix retrieves all settings with keys starting with the given prefix.
func (r *settingsRepository) GetByPrefix(ctx context.Context, prefix string) ([]model.Setting, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key, value, updated_at FROM settings WHERE key LIKE ? ORDER BY key
	`, prefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []model.Setting
	for rows.Next() {
		var s model.Setting
		var updatedAt string
		if err := rows.Scan(&s.Key, &s.Value, &updatedAt); err != nil {
			return nil, err
		}
		s.UpdatedAt, _ = parseTime(updatedAt)
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Delete removes a setting by key.
func (r *settingsRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return err
}

func (r *settingsRepository) GetInt(ctx context.Context, key string) (int, bool, error) {
	s, err := r.Get(ctx, key)
	if err != nil || s == nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(s.Value)
	if err != nil {
		return 0, false, fmt.Errorf("setting %s: %w", key, err)
	}
	return n, true, nil
}

func (r *settingsRepository) SetInt(ctx context.Context, key string, value int) error {
	return r.Set(ctx, key, strconv.Itoa(value))
}

func (r *settingsRepository) ImportedAt(ctx context.Context) (time.Time, bool, error) {
	s, err := r.Get(ctx, KeyExcelImported)
	if err != nil || s == nil {
		return time.Time{}, false, err
	}
	// markers written as plain flags still count as imported
	at, _ := parseTime(s.Value)
	return at, true, nil
}

func (r *settingsRepository) MarkImported(ctx context.Context, at time.Time) error {
	return r.Set(ctx, KeyExcelImported, at.UTC().Format(time.RFC3339))
}
