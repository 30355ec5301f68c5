// Package seed loads reference data and cases from a YAML or JSON file
// into the store.
package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/tu613/vet-learning-app/internal/refdata"
	"github.com/tu613/vet-learning-app/internal/store"
)

// SupportedMajor is the seed format major version this build reads.
const SupportedMajor = "v1"

// Document is a parsed seed file. Methodology and Checklist are optional;
// an absent collection leaves the stored one untouched.
type Document struct {
	Version     string                    `json:"version"`
	Methodology []refdata.MethodologyStep `json:"methodology"`
	Checklist   *refdata.Checklist        `json:"checklist"`
	Cases       []map[string]any          `json:"cases"`
}

// Report summarises what Apply wrote.
type Report struct {
	Steps        int
	Checklist    string
	Cases        int
	GeneratedIDs []string
	Warnings     []string
}

// Load reads path. Files ending in .json are parsed as JSON, anything else
// as YAML.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data, strings.EqualFold(filepath.Ext(path), ".json"))
}

// Parse decodes, validates and normalises a seed document.
func Parse(data []byte, isJSON bool) (*Document, error) {
	var generic any
	if isJSON {
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("parse seed JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("parse seed YAML: %w", err)
		}
	}

	// Round-trip through JSON so YAML and JSON input validate identically.
	raw, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("encode seed document: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode seed document: %w", err)
	}
	if err := validate(inst); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode seed document: %w", err)
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}
	doc.normalize()
	return &doc, nil
}

func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

func checkVersion(v string) error {
	cv := canonicalVersion(v)
	if !semver.IsValid(cv) {
		return fmt.Errorf("seed version %q is not a semantic version", v)
	}
	if semver.Major(cv) != SupportedMajor {
		return fmt.Errorf("seed version %s is not supported (want %s.x)", v, SupportedMajor)
	}
	return nil
}

func (d *Document) normalize() {
	sort.SliceStable(d.Methodology, func(i, j int) bool {
		return d.Methodology[i].StepNumber < d.Methodology[j].StepNumber
	})
	d.Methodology = lo.UniqBy(d.Methodology, func(s refdata.MethodologyStep) int { return s.StepNumber })

	if d.Checklist != nil {
		for i, st := range d.Checklist.Stages {
			skills := lo.Filter(st.Skills, func(s refdata.Skill, _ int) bool {
				return strings.TrimSpace(s.Item) != ""
			})
			d.Checklist.Stages[i].Skills = lo.UniqBy(skills, func(s refdata.Skill) string {
				return strings.ToLower(strings.TrimSpace(s.Item))
			})
			if st.ID == "" {
				d.Checklist.Stages[i].ID = fmt.Sprintf("stage-%d", i+1)
			}
		}
	}
}

// caseID returns the identifier carried by the record itself, if any.
func caseID(doc map[string]any) string {
	for _, k := range []string{"id", "_id", "case_id"} {
		if v, ok := doc[k]; ok {
			if id := strings.TrimSpace(refdata.RenderID(v)); id != "" {
				return id
			}
		}
	}
	return ""
}

// Apply writes d to repo. Cases without an identifier get a fresh UUID.
func Apply(ctx context.Context, repo store.ReferenceRepo, d *Document) (*Report, error) {
	rep := &Report{}

	if len(d.Methodology) > 0 {
		if err := repo.ReplaceMethodology(ctx, d.Methodology); err != nil {
			return rep, err
		}
		rep.Steps = len(d.Methodology)
	}

	if d.Checklist != nil {
		cl := *d.Checklist
		if cl.Version != "" && !semver.IsValid(canonicalVersion(cl.Version)) {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("checklist version %q is not a semantic version", cl.Version))
		}
		if err := repo.UpsertChecklist(ctx, cl); err != nil {
			return rep, err
		}
		rep.Checklist = cl.Name
	}

	for _, doc := range d.Cases {
		id := caseID(doc)
		if id == "" {
			id = uuid.NewString()
			rep.GeneratedIDs = append(rep.GeneratedIDs, id)
		}
		c := refdata.CaseScenario{ID: id, Doc: doc}
		if !c.Has(refdata.FieldPetName) && !c.Has(refdata.FieldCaseName) {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("case %s has neither a case name nor a pet name", id))
		}
		if err := repo.UpsertCase(ctx, c); err != nil {
			return rep, err
		}
		rep.Cases++
	}

	return rep, nil
}
