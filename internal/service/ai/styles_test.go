package ai_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mutarjim/internal/service/ai"
)

func TestStyleRegistry_Defaults(t *testing.T) {
	registry, err := ai.NewStyleRegistry()
	require.NoError(t, err)

	list := registry.List()
	require.Len(t, list, 5)

	personal, ok := registry.Lookup(ai.StylePersonal)
	require.True(t, ok)
	require.Equal(t, ai.StyleExemplarDerived, personal.Kind)
	require.Empty(t, personal.Template)

	// older archives store display names
	byName, ok := registry.Lookup("Mahmoud Shaker")
	require.True(t, ok)
	require.Equal(t, ai.StyleMahmoudShaker, byName.ID)

	byArabic, ok := registry.Lookup("أسلوبي الحقيقي")
	require.True(t, ok)
	require.Equal(t, ai.StyleLiterary, byArabic.ID)

	_, ok = registry.Lookup("unknown")
	require.False(t, ok)
}

func TestStyleRegistry_ListIsCopy(t *testing.T) {
	registry, err := ai.NewStyleRegistry()
	require.NoError(t, err)

	list := registry.List()
	list[0].DisplayName = "changed"

	require.NotEqual(t, "changed", registry.List()[0].DisplayName)
}

func TestStyleRegistry_Extra(t *testing.T) {
	registry, err := ai.NewStyleRegistry(ai.StyleProfile{ID: "taha-hussein", DisplayName: "Taha Hussein", Kind: ai.StyleStatic})
	require.NoError(t, err)

	p, ok := registry.Lookup("taha-hussein")
	require.True(t, ok)
	require.Contains(t, p.Template, "{style}", "static style without template gets the generic frame")

	_, err = ai.NewStyleRegistry(ai.StyleProfile{ID: ai.StyleAlJahiz, Kind: ai.StyleStatic})
	require.ErrorIs(t, err, ai.ErrDuplicateStyle)

	_, err = ai.NewStyleRegistry(ai.StyleProfile{ID: "x", DisplayName: "al-Jahiz", Kind: ai.StyleStatic})
	require.ErrorIs(t, err, ai.ErrDuplicateStyle)

	_, err = ai.NewStyleRegistry(ai.StyleProfile{ID: "", Kind: ai.StyleStatic})
	require.Error(t, err)

	_, err = ai.NewStyleRegistry(ai.StyleProfile{ID: "odd"})
	require.Error(t, err)
}

func TestLoadStyleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.yaml")
	content := `styles:
  - id: taha-hussein
    name: Taha Hussein
    kind: static
  - id: my-essays
    name: My essays
    kind: exemplar
  - id: terse
    template: "Translate this English text into terse {style} Arabic:"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	profiles, err := ai.LoadStyleFile(path)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	require.Equal(t, ai.StyleStatic, profiles[0].Kind)
	require.Equal(t, ai.StyleExemplarDerived, profiles[1].Kind)
	require.Equal(t, ai.StyleStatic, profiles[2].Kind)

	registry, err := ai.NewStyleRegistry(profiles...)
	require.NoError(t, err)
	terse, ok := registry.Lookup("terse")
	require.True(t, ok)
	require.Equal(t, "terse", terse.DisplayName)

	prompt, err := ai.BuildTranslatePrompt(terse, "Hi.", ai.ExemplarSet{})
	require.NoError(t, err)
	require.Equal(t, "Translate this English text into terse terse Arabic:\n\nHi.", prompt)
}

func TestLoadStyleFile_Errors(t *testing.T) {
	_, err := ai.LoadStyleFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("styles:\n  - id: x\n    kind: dynamic\n"), 0o644))
	_, err = ai.LoadStyleFile(path)
	require.Error(t, err)
}
