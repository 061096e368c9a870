package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mutarjim/internal/model"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want model.Status
		ok   bool
	}{
		{"draft", model.StatusDraft, true},
		{"NeedsRevision", model.StatusNeedsRevision, true},
		{"بحاجة تنقيح", model.StatusNeedsRevision, true},
		{"جيدة", model.StatusGood, true},
		{"Final", model.StatusFinal, true},
		{"", model.StatusDraft, false},
		{"published", model.StatusDraft, false},
	}
	for _, tt := range tests {
		got, ok := model.ParseStatus(tt.in)
		require.Equal(t, tt.want, got, tt.in)
		require.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestStatuses_AllValidWithLabels(t *testing.T) {
	require.Len(t, model.Statuses, 4)
	for _, s := range model.Statuses {
		require.True(t, s.Valid())
		require.NotEmpty(t, s.Label())
	}
	require.False(t, model.Status("archived").Valid())
}
