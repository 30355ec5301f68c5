package evaluation

import (
	"fmt"
	"strings"
)

// Section titles of the required three-part answer.
const (
	SectionSkillScoring = "Skill Scoring"
	SectionOverall      = "Overall Summary"
	SectionSuggestions  = "Suggestions"
)

// BuildInstruction assembles the grader's system instruction from the two
// grounding blocks and the fixed output contract. Sentinel blocks are
// embedded verbatim.
func BuildInstruction(methodologyCtx, checklistCtx, language string) string {
	var b strings.Builder

	b.WriteString("You are an expert in veterinary communication and clinical history taking. ")
	b.WriteString("Your task is to evaluate the history taking shown in the conversation transcript. ")
	b.WriteString("Use the GVCCCM principles to summarise coverage and the Calgary-Cambridge skills list to score.\n\n")

	b.WriteString(checklistCtx)
	b.WriteString("\n\n")
	b.WriteString(methodologyCtx)
	b.WriteString("\n\n")

	b.WriteString("Your reply must contain exactly three parts, in this order:\n")
	b.WriteString(fmt.Sprintf("1. **%s**: score every skill item in the checklist from 1 to 5, each with a short justification.\n", SectionSkillScoring))
	b.WriteString(fmt.Sprintf("2. **%s**: state which GVCCCM steps the history taking covered and give an approximate aggregate score.\n", SectionOverall))
	b.WriteString(fmt.Sprintf("3. **%s**: give brief suggestions to improve the communication and history taking overall.\n", SectionSuggestions))
	b.WriteString(fmt.Sprintf("Write in polite, professional %s.", language))

	return b.String()
}
