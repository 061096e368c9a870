package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repos are repositories bound to one transaction.
type Repos struct {
	Translations TranslationRepository
	Settings     SettingsRepository
}

// Transactor runs a unit of work against tx-scoped repositories.
type Transactor interface {
	// WithTx commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(Repos) error) error
}

type sqlTransactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) Transactor {
	return &sqlTransactor{db: db}
}

func (t *sqlTransactor) WithTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	repos := Repos{
		Translations: NewTranslationRepository(tx),
		Settings:     NewSettingsRepository(tx),
	}
	if err := fn(repos); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
