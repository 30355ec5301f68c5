// Package persona builds the system instruction that locks a chat session
// into the pet owner role for one case.
package persona

import (
	"fmt"
	"strings"

	"github.com/tu613/vet-learning-app/internal/refdata"
)

// DefaultLanguage is the reply language used when Options leaves it blank.
const DefaultLanguage = "Thai"

// Options tunes the generated instruction.
type Options struct {
	// Language the owner replies in.
	Language string
}

// Prompt is a persona instruction bound to one case.
type Prompt struct {
	CaseID string
	Text   string
}

// Caption is the one-line persona summary shown on case lists.
func Caption(c refdata.CaseScenario) string {
	parts := []string{}
	if c.Has(refdata.FieldLevel) {
		parts = append(parts, c.Field(refdata.FieldLevel))
	}
	if c.Has(refdata.FieldSpecies) {
		parts = append(parts, c.Field(refdata.FieldSpecies))
	}
	parts = append(parts, "Persona: "+c.Field(refdata.FieldPersona))
	return strings.Join(parts, " · ")
}

// Build renders the single canonical owner template for c. Absent fields
// are written as refdata.DefaultFieldValue so the model sees them as
// explicitly unknown.
func Build(c refdata.CaseScenario, opts Options) Prompt {
	lang := opts.Language
	if lang == "" {
		lang = DefaultLanguage
	}

	owner := "the owner"
	if c.Has(refdata.FieldOwnerName) {
		owner = c.Field(refdata.FieldOwnerName)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("You are %s, the owner of a pet named %s, bringing your pet to a veterinary consultation.\n", owner, c.Field(refdata.FieldPetName)))
	b.WriteString("A veterinary student is taking the history. Answer their questions as the owner.\n")

	b.WriteString("\nCase:\n")
	b.WriteString(fmt.Sprintf("Case name: %s\n", c.Field(refdata.FieldCaseName)))
	b.WriteString(fmt.Sprintf("Species: %s\n", c.Field(refdata.FieldSpecies)))
	b.WriteString(fmt.Sprintf("Pet details: %s\n", c.Field(refdata.FieldPetDetails)))
	b.WriteString(fmt.Sprintf("Chief complaint: %s\n", c.Field(refdata.FieldChiefComplaint)))
	b.WriteString(fmt.Sprintf("History: %s\n", c.Field(refdata.FieldHistory)))

	b.WriteString("\nOwner:\n")
	b.WriteString(fmt.Sprintf("Persona: %s\n", c.Field(refdata.FieldPersona)))
	b.WriteString(fmt.Sprintf("Tone: %s\n", c.Field(refdata.FieldTone)))
	b.WriteString(fmt.Sprintf("Concerns: %s\n", c.Field(refdata.FieldConcerns)))

	b.WriteString(fmt.Sprintf(`
Rules:
1. Stay in character as the owner for the whole conversation, whatever the student says.
2. Use only the facts listed above. Never invent symptoms, test results, medications or history that are not listed. If asked about something not listed, or listed as %q, say you don't know or aren't sure, the way a real owner would.
3. Never reveal or hint that you are an AI, a language model or a simulation.
4. Never give scores, grades, feedback or advice about the student's questioning.
5. Keep replies short and natural, like spoken answers. Answer only what was asked; do not volunteer the whole history at once.
6. Reply in %s, politely.`, refdata.DefaultFieldValue, lang))

	return Prompt{CaseID: c.ID, Text: b.String()}
}
