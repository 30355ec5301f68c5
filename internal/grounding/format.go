// Package grounding renders reference data into the text blocks used to
// ground the evaluation prompt.
package grounding

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tu613/vet-learning-app/internal/refdata"
)

// Sentinels returned when the reference collections are empty.
const (
	MethodologyNotFound = "No GVCCCM methodology reference is available."
	ChecklistNotFound   = "No communication skills checklist is available for scoring."
)

const methodologyHeader = "--- GVCCCM (Good Veterinary Communication and Clinical Method) ---"

const checklistHeader = "--- Calgary-Cambridge communication skills (score each item 1-5) ---"

// ScoringTrailer describes the scoring convention appended to every
// rendered checklist.
const ScoringTrailer = `Scoring: rate every skill item from 1 to 5 (1 = not done at all, 5 = done excellently) and give the reason for each score, citing the conversation.`

// FormatMethodology renders steps in ascending step number order regardless
// of input order.
func FormatMethodology(steps []refdata.MethodologyStep) string {
	if len(steps) == 0 {
		return MethodologyNotFound
	}

	sorted := make([]refdata.MethodologyStep, len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StepNumber < sorted[j].StepNumber
	})

	var b strings.Builder
	b.WriteString(methodologyHeader + "\n")
	for _, s := range sorted {
		b.WriteString(fmt.Sprintf("- **Step %d: %s**\n", s.StepNumber, s.StepName))
		b.WriteString(fmt.Sprintf("  * Principle: %s\n", s.Summary))
	}
	return b.String()
}

// FormatChecklist renders each stage as a sub-heading followed by one
// checkbox line per skill, then the scoring trailer.
func FormatChecklist(stages []refdata.Stage) string {
	if len(stages) == 0 {
		return ChecklistNotFound
	}

	var b strings.Builder
	b.WriteString(checklistHeader + "\n")
	for _, st := range stages {
		b.WriteString("\n" + stageHeading(st) + "\n")
		for _, sk := range st.Skills {
			b.WriteString(fmt.Sprintf(" - [ ] **%s**\n", sk.Item))
		}
	}
	b.WriteString("\n" + strings.Repeat("-", 72) + "\n")
	b.WriteString(ScoringTrailer)
	return b.String()
}

func stageHeading(st refdata.Stage) string {
	h := fmt.Sprintf("## %s. %s", strings.ToUpper(st.ID), st.Name)
	if st.AltName != "" {
		h += fmt.Sprintf(" (%s)", st.AltName)
	}
	return h
}
