package grounding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu613/vet-learning-app/internal/refdata"
)

func TestFormatMethodology_SortsByStepNumber(t *testing.T) {
	steps := []refdata.MethodologyStep{
		{StepNumber: 3, StepName: "Gathering information", Summary: "open then closed questions"},
		{StepNumber: 1, StepName: "Preparation", Summary: "review the record"},
		{StepNumber: 2, StepName: "Initiating the session", Summary: "greet and identify"},
	}

	out := FormatMethodology(steps)

	require.True(t, strings.HasPrefix(out, methodologyHeader))
	i1 := strings.Index(out, "Step 1: Preparation")
	i2 := strings.Index(out, "Step 2: Initiating the session")
	i3 := strings.Index(out, "Step 3: Gathering information")
	require.True(t, i1 >= 0 && i2 >= 0 && i3 >= 0, out)
	assert.Less(t, i1, i2)
	assert.Less(t, i2, i3)
	assert.Contains(t, out, "Principle: review the record")

	// Input slice is not reordered.
	assert.Equal(t, 3, steps[0].StepNumber)
}

func TestFormatMethodology_Empty(t *testing.T) {
	assert.Equal(t, MethodologyNotFound, FormatMethodology(nil))
	assert.Equal(t, MethodologyNotFound, FormatMethodology([]refdata.MethodologyStep{}))
	assert.NotEmpty(t, MethodologyNotFound)
}

func TestFormatChecklist(t *testing.T) {
	stages := []refdata.Stage{
		{ID: "a", Name: "Initiating the session", AltName: "การเริ่มต้น", Skills: []refdata.Skill{
			{Item: "Greets client"}, {Item: "Introduces self"},
		}},
		{ID: "b", Name: "Gathering information", Skills: []refdata.Skill{
			{Item: "Uses open questions"},
		}},
	}

	out := FormatChecklist(stages)

	assert.True(t, strings.HasPrefix(out, checklistHeader))
	assert.Contains(t, out, "## A. Initiating the session (การเริ่มต้น)\n")
	assert.Contains(t, out, "## B. Gathering information\n")
	assert.Contains(t, out, " - [ ] **Greets client**\n")
	assert.True(t, strings.HasSuffix(out, ScoringTrailer))

	order := []string{"Greets client", "Introduces self", "Gathering information", "Uses open questions"}
	last := -1
	for _, s := range order {
		idx := strings.Index(out, s)
		require.GreaterOrEqual(t, idx, 0, s)
		assert.Greater(t, idx, last, s)
		last = idx
	}
}

func TestFormatChecklist_Empty(t *testing.T) {
	assert.Equal(t, ChecklistNotFound, FormatChecklist(nil))
	assert.NotEmpty(t, ChecklistNotFound)
}
