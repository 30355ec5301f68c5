package refdata

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultFieldValue is substituted for any case field a record lacks.
const DefaultFieldValue = "not specified"

// CaseField names a canonical case attribute.
type CaseField string

const (
	FieldCaseName       CaseField = "case_name"
	FieldLevel          CaseField = "level"
	FieldSpecies        CaseField = "species"
	FieldPetName        CaseField = "pet_name"
	FieldPetDetails     CaseField = "pet_details"
	FieldChiefComplaint CaseField = "chief_complaint"
	FieldHistory        CaseField = "history"
	FieldOwnerName      CaseField = "owner_name"
	FieldPersona        CaseField = "persona"
	FieldTone           CaseField = "tone"
	FieldConcerns       CaseField = "concerns"
)

type fieldSpec struct {
	Key       string
	Fallbacks []string
}

// caseFields lists, per canonical field, the top-level key checked first and
// the dotted paths tried after it, in priority order.
var caseFields = map[CaseField]fieldSpec{
	FieldCaseName:       {"case_name", []string{"name", "title"}},
	FieldLevel:          {"level", []string{"difficulty"}},
	FieldSpecies:        {"species", []string{"pet_species", "patient.species"}},
	FieldPetName:        {"pet_name", []string{"patient.name", "pet.name"}},
	FieldPetDetails:     {"pet_details", []string{"signalment", "patient.details", "patient.signalment"}},
	FieldChiefComplaint: {"chief_complaint", []string{"presenting_complaint", "patient.chief_complaint"}},
	FieldHistory:        {"history", []string{"medical_history", "patient.history"}},
	FieldOwnerName:      {"owner_name", []string{"owner_role.name", "owner.name"}},
	FieldPersona:        {"owner_persona", []string{"persona", "owner_role.persona", "owner_role.personality", "owner.persona"}},
	FieldTone:           {"tone", []string{"owner_role.tone", "owner_role.communication_style", "owner.tone"}},
	FieldConcerns:       {"concerns", []string{"owner_role.concerns", "owner.concerns"}},
}

// Lookup reads field from the top level of record, then each dotted path in
// fallbackPaths, returning def when none of them hold a non-empty value.
func Lookup(record map[string]any, field string, fallbackPaths []string, def string) string {
	if v, ok := render(record[field]); ok {
		return v
	}
	for _, p := range fallbackPaths {
		if v, ok := render(walk(record, strings.Split(p, "."))); ok {
			return v
		}
	}
	return def
}

func walk(record map[string]any, path []string) any {
	var cur any = record
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[seg]
	}
	return cur
}

func render(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		t = strings.TrimSpace(t)
		return t, t != ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := render(item); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", "), len(parts) > 0
	case map[string]any:
		return "", false
	default:
		return RenderID(t), true
	}
}

// RenderID turns a native identifier value into plain text. Whole floats
// (as produced by JSON decoding) lose their fraction; byte slices are hex.
func RenderID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return hex.EncodeToString(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return RenderID(float64(t))
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
