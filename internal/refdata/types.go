package refdata

// MethodologyStep is one stage of the consultation framework used as
// grading reference. StepNumber is unique and defines display order.
type MethodologyStep struct {
	StepNumber int    `json:"step_number" yaml:"step_number"`
	StepName   string `json:"step_name" yaml:"step_name"`
	Summary    string `json:"summary" yaml:"summary"`
}

// Skill is a single checklist item scored 1-5 during evaluation.
type Skill struct {
	Item string `json:"skill_item" yaml:"skill_item"`
}

// Stage groups checklist skills. Skill order is display order only.
type Stage struct {
	ID      string  `json:"stage_id" yaml:"stage_id"`
	Name    string  `json:"stage_name" yaml:"stage_name"`
	AltName string  `json:"stage_name_alt,omitempty" yaml:"stage_name_alt,omitempty"`
	Skills  []Skill `json:"skills" yaml:"skills"`
}

// Checklist is the named scoring rubric document.
type Checklist struct {
	Name    string  `json:"checklist_name" yaml:"checklist_name"`
	Version string  `json:"version" yaml:"version"`
	Stages  []Stage `json:"assessment_stages" yaml:"assessment_stages"`
}

// CaseScenario is one simulated patient/owner persona. The document keeps
// whatever shape the record was authored in; read it through Field.
type CaseScenario struct {
	ID  string
	Doc map[string]any
}

// Field resolves one of the canonical case fields through the
// shape-tolerant accessor, returning DefaultFieldValue when absent.
func (c CaseScenario) Field(f CaseField) string {
	spec := caseFields[f]
	return Lookup(c.Doc, spec.Key, spec.Fallbacks, DefaultFieldValue)
}

// Has reports whether the record actually carries a value for f.
func (c CaseScenario) Has(f CaseField) bool {
	spec := caseFields[f]
	return Lookup(c.Doc, spec.Key, spec.Fallbacks, "") != ""
}

// Title is the display name for lists and headers. Records without a case
// name fall back to the pet name, then to the ID.
func (c CaseScenario) Title() string {
	if c.Has(FieldCaseName) {
		return c.Field(FieldCaseName)
	}
	if c.Has(FieldPetName) {
		return c.Field(FieldPetName)
	}
	return c.ID
}
