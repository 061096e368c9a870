package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mutarjim/internal/model"
	"mutarjim/internal/snowflake"
)

//go:generate mockgen -source=translation_repository.go -destination=mock/translation_repository.go -package=mock

// TranslationRepository is the archive's record store. List and ListPairs
// scan in insertion order (ascending id).
type TranslationRepository interface {
	Create(ctx context.Context, t model.Translation) (model.Translation, error)
	GetByID(ctx context.Context, id int64) (model.Translation, error)
	List(ctx context.Context) ([]model.Translation, error)
	ListPairs(ctx context.Context) ([]model.ExemplarPair, error)
	Update(ctx context.Context, t model.Translation) (model.Translation, error)
	Deduplicate(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int, error)
}

type translationRepository struct {
	db dbtx
}

func NewTranslationRepository(db dbtx) TranslationRepository {
	return &translationRepository{db: db}
}

const translationColumns = `id, COALESCE(title, ''), COALESCE(source_text, ''), COALESCE(style, ''),
	COALESCE(model, ''), COALESCE(translation, ''), COALESCE(notes, ''), COALESCE(status, ''),
	COALESCE(created_at, ''), COALESCE(updated_at, '')`

func (r *translationRepository) Create(ctx context.Context, t model.Translation) (model.Translation, error) {
	t.ID = snowflake.NextID()
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO translations (id, title, source_text, style, model, translation, notes, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Title,
		t.SourceText,
		t.Style,
		t.Model,
		t.Translation,
		t.Notes,
		string(t.Status),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return model.Translation{}, fmt.Errorf("create translation: %w", err)
	}
	return t, nil
}

func (r *translationRepository) GetByID(ctx context.Context, id int64) (model.Translation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+translationColumns+` FROM translations WHERE id = ?`, id)
	t, err := scanTranslation(row)
	if err != nil {
		return model.Translation{}, fmt.Errorf("get translation: %w", err)
	}
	return t, nil
}

func (r *translationRepository) List(ctx context.Context) ([]model.Translation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+translationColumns+` FROM translations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	defer rows.Close()

	var translations []model.Translation
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan translation: %w", err)
		}
		translations = append(translations, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translations: %w", err)
	}
	return translations, nil
}

func (r *translationRepository) ListPairs(ctx context.Context) ([]model.ExemplarPair, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT source_text, translation FROM translations
		WHERE source_text IS NOT NULL AND trim(source_text) <> ''
		  AND translation IS NOT NULL AND trim(translation) <> ''
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list exemplar pairs: %w", err)
	}
	defer rows.Close()

	var pairs []model.ExemplarPair
	for rows.Next() {
		var p model.ExemplarPair
		if err := rows.Scan(&p.SourceText, &p.Translation); err != nil {
			return nil, fmt.Errorf("scan exemplar pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exemplar pairs: %w", err)
	}
	return pairs, nil
}

func (r *translationRepository) Update(ctx context.Context, t model.Translation) (model.Translation, error) {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE translations
		 SET title = ?, source_text = ?, style = ?, model = ?, translation = ?, notes = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		t.Title,
		t.SourceText,
		t.Style,
		t.Model,
		t.Translation,
		t.Notes,
		string(t.Status),
		formatTime(time.Now()),
		t.ID,
	)
	if err != nil {
		return model.Translation{}, fmt.Errorf("update translation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return model.Translation{}, fmt.Errorf("update translation: %w", err)
	}
	if affected == 0 {
		return model.Translation{}, fmt.Errorf("update translation: %w", sql.ErrNoRows)
	}
	return r.GetByID(ctx, t.ID)
}

// Deduplicate keeps the lowest id of every (title, source_text, translation)
// group and returns how many rows were removed.
func (r *translationRepository) Deduplicate(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM translations
		WHERE id NOT IN (
			SELECT MIN(id)
			FROM translations
			GROUP BY title, source_text, translation
		)`)
	if err != nil {
		return 0, fmt.Errorf("deduplicate translations: %w", err)
	}
	return result.RowsAffected()
}

func (r *translationRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM translations`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTranslation(row rowScanner) (model.Translation, error) {
	var t model.Translation
	var status, createdAt, updatedAt string
	err := row.Scan(
		&t.ID, &t.Title, &t.SourceText, &t.Style, &t.Model, &t.Translation, &t.Notes,
		&status, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Translation{}, err
	}
	t.Status, _ = model.ParseStatus(status)
	t.CreatedAt, _ = parseTime(createdAt)
	t.UpdatedAt, _ = parseTime(updatedAt)
	return t, nil
}
