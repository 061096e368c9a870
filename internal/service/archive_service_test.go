package service_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"mutarjim/internal/model"
	"mutarjim/internal/repository"
	"mutarjim/internal/repository/mock"
	"mutarjim/internal/repository/testutil"
	"mutarjim/internal/service"
	"mutarjim/internal/service/ai"
)

func newArchive(t *testing.T) (service.ArchiveService, *sql.DB) {
	t.Helper()
	database := testutil.NewTestDB(t)
	styles, err := ai.NewStyleRegistry()
	require.NoError(t, err)
	return service.NewArchiveService(repository.NewTranslationRepository(database), styles), database
}

func TestArchiveService_Save_Defaults(t *testing.T) {
	svc, _ := newArchive(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, service.SaveRequest{
		Title:       "   ",
		SourceText:  "Hello",
		Style:       "al-Jahiz",
		Translation: "مرحبا",
	})
	require.NoError(t, err)
	require.NotZero(t, saved.ID)
	require.Equal(t, model.DefaultTitle, saved.Title)
	require.Equal(t, ai.StyleAlJahiz, saved.Style)
	require.Equal(t, model.StatusDraft, saved.Status)

	got, err := svc.Get(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved.Translation, got.Translation)
}

func TestArchiveService_Save_ArabicStatus(t *testing.T) {
	svc, _ := newArchive(t)

	saved, err := svc.Save(context.Background(), service.SaveRequest{
		SourceText: "Hello",
		Style:      ai.StylePersonal,
		Status:     "نهائية",
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusFinal, saved.Status)
}

func TestArchiveService_Save_Validation(t *testing.T) {
	svc, _ := newArchive(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   service.SaveRequest
		field string
	}{
		{"blank source", service.SaveRequest{SourceText: " ", Style: ai.StyleAlJahiz}, "sourceText"},
		{"unknown style", service.SaveRequest{SourceText: "x", Style: "Homer"}, "style"},
		{"unknown status", service.SaveRequest{SourceText: "x", Style: ai.StyleAlJahiz, Status: "published"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(ctx, tt.req)
			require.ErrorIs(t, err, service.ErrInvalid)
			var inputErr *service.InputError
			require.ErrorAs(t, err, &inputErr)
			require.Equal(t, tt.field, inputErr.Field)
		})
	}

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestArchiveService_Update(t *testing.T) {
	svc, _ := newArchive(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, service.SaveRequest{SourceText: "Hello", Style: ai.StyleAlJahiz, Translation: "أهلا"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, saved.ID, service.SaveRequest{
		Title:       "Greeting",
		SourceText:  "Hello",
		Style:       ai.StyleAlJahiz,
		Translation: "مرحبا",
		Status:      "good",
	})
	require.NoError(t, err)
	require.Equal(t, saved.ID, updated.ID)
	require.Equal(t, "مرحبا", updated.Translation)
	require.Equal(t, model.StatusGood, updated.Status)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestArchiveService_Update_KeepsLegacyStyle(t *testing.T) {
	svc, database := newArchive(t)
	ctx := context.Background()

	id := testutil.SeedTranslation(t, database, model.Translation{SourceText: "x", Style: "Taha Hussein", Translation: "y"})

	updated, err := svc.Update(ctx, id, service.SaveRequest{SourceText: "x", Style: "Taha Hussein", Translation: "z"})
	require.NoError(t, err)
	require.Equal(t, "Taha Hussein", updated.Style)

	_, err = svc.Update(ctx, id, service.SaveRequest{SourceText: "x", Style: "Ibn Khaldun", Translation: "z"})
	require.ErrorIs(t, err, service.ErrInvalid)
}

func TestArchiveService_NotFound(t *testing.T) {
	svc, _ := newArchive(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, 42)
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.Update(ctx, 42, service.SaveRequest{SourceText: "x", Style: ai.StyleAlJahiz})
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestArchiveService_Search(t *testing.T) {
	svc, database := newArchive(t)
	ctx := context.Background()

	testutil.SeedTranslation(t, database, model.Translation{Title: "The OCEAN", SourceText: "waves", Style: ai.StyleAlJahiz, Translation: "أمواج"})
	testutil.SeedTranslation(t, database, model.Translation{Title: "Desert", SourceText: "sand", Style: ai.StylePersonal, Translation: "رمال", Notes: "ocean of dunes"})
	testutil.SeedTranslation(t, database, model.Translation{Title: "Straße", SourceText: "road", Style: ai.StyleAlJahiz, Translation: "طريق", Status: model.StatusFinal})

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"The OCEAN", "Desert", "Straße"}},
		{"ocean", []string{"The OCEAN", "Desert"}},
		{"رمال", []string{"Desert"}},
		{"STRASSE", []string{"Straße"}},
		{"نهائية", []string{"Straße"}},
		{"أسلوبي الشخصي", []string{"Desert"}},
		{"nothing here", nil},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("q=%q", tt.query), func(t *testing.T) {
			items, err := svc.Search(ctx, tt.query)
			require.NoError(t, err)
			var titles []string
			for _, item := range items {
				titles = append(titles, item.Title)
			}
			require.Equal(t, tt.want, titles)
		})
	}
}

func TestArchiveService_Deduplicate(t *testing.T) {
	svc, database := newArchive(t)
	ctx := context.Background()

	testutil.SeedTranslation(t, database, model.Translation{ID: 1, Title: "A", SourceText: "x", Translation: "y"})
	testutil.SeedTranslation(t, database, model.Translation{ID: 2, Title: "A", SourceText: "x", Translation: "y"})
	testutil.SeedTranslation(t, database, model.Translation{ID: 3, Title: "B", SourceText: "p", Translation: "q"})

	removed, err := svc.Deduplicate(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.EqualValues(t, 1, items[0].ID)
	require.EqualValues(t, 3, items[1].ID)

	removed, err = svc.Deduplicate(ctx)
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestArchiveService_StoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockTranslationRepository(ctrl)
	styles, err := ai.NewStyleRegistry()
	require.NoError(t, err)
	svc := service.NewArchiveService(repo, styles)
	ctx := context.Background()
	cause := errors.New("database is locked")

	repo.EXPECT().Create(ctx, gomock.Any()).Return(model.Translation{}, cause)
	_, err = svc.Save(ctx, service.SaveRequest{SourceText: "x", Style: ai.StyleAlJahiz})
	require.ErrorIs(t, err, service.ErrStore)
	require.ErrorIs(t, err, cause)

	repo.EXPECT().List(ctx).Return(nil, cause)
	_, err = svc.Search(ctx, "x")
	require.ErrorIs(t, err, service.ErrStore)

	repo.EXPECT().Deduplicate(ctx).Return(int64(0), cause)
	_, err = svc.Deduplicate(ctx)
	require.ErrorIs(t, err, service.ErrStore)
}

func TestArchiveService_Listings(t *testing.T) {
	svc, _ := newArchive(t)

	styles := svc.Styles()
	require.Len(t, styles, len(ai.DefaultStyles()))
	require.Equal(t, ai.StyleButrusAlBustani, styles[0].ID)

	statuses := svc.Statuses()
	require.Len(t, statuses, 4)
	require.Equal(t, model.StatusDraft, statuses[0].Value)
	require.Equal(t, "مسوّدة", statuses[0].Label)
}
