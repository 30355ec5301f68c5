package casedetail

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu613/vet-learning-app/internal/refdata"
	"github.com/tu613/vet-learning-app/internal/screen"
)

func testCase() refdata.CaseScenario {
	return refdata.CaseScenario{ID: "c1", Doc: map[string]any{
		"case_name":       "Vomiting Cat",
		"species":         "Feline",
		"pet_name":        "Mali",
		"chief_complaint": "Vomiting for two days",
		"history":         "Ate a hair tie",
	}}
}

func TestViewShowsBriefNotHistory(t *testing.T) {
	s := New(testCase())
	view := s.View(100, 40)

	assert.Contains(t, view, "Vomiting Cat")
	assert.Contains(t, view, "Feline")
	assert.Contains(t, view, "Vomiting for two days")
	assert.NotContains(t, view, "hair tie")
	assert.NotContains(t, view, "Owner persona")
	assert.Equal(t, "Vomiting Cat", s.Title())
}

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyPressMsg
		want tea.Msg
	}{
		{"enter starts chat", tea.KeyPressMsg{Code: tea.KeyEnter}, screen.StartChatMsg{}},
		{"esc goes back", tea.KeyPressMsg{Code: tea.KeyEscape}, screen.BackMsg{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cmd := New(testCase()).Update(tt.key)
			require.NotNil(t, cmd)
			assert.Equal(t, tt.want, cmd())
		})
	}
}
