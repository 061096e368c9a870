package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mutarjim/internal/model"
	"mutarjim/internal/repository"
	"mutarjim/internal/repository/testutil"
)

func TestTransactor_WithTx(t *testing.T) {
	db := testutil.NewTestDB(t)
	tx := repository.NewTransactor(db)
	translations := repository.NewTranslationRepository(db)
	settings := repository.NewSettingsRepository(db)
	ctx := context.Background()

	record := model.Translation{Title: "Sea", SourceText: "The sea.", Translation: "البحر.", Status: model.StatusDraft}

	errBoom := errors.New("boom")
	err := tx.WithTx(ctx, func(repos repository.Repos) error {
		_, err := repos.Translations.Create(ctx, record)
		require.NoError(t, err)
		require.NoError(t, repos.Settings.MarkImported(ctx, time.Now()))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	count, err := translations.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
	_, imported, err := settings.ImportedAt(ctx)
	require.NoError(t, err)
	require.False(t, imported)

	require.NoError(t, tx.WithTx(ctx, func(repos repository.Repos) error {
		if _, err := repos.Translations.Create(ctx, record); err != nil {
			return err
		}
		return repos.Settings.MarkImported(ctx, time.Now())
	}))

	count, err = translations.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	_, imported, err = settings.ImportedAt(ctx)
	require.NoError(t, err)
	require.True(t, imported)
}
