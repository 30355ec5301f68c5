package seed

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://vetlearn-seed.json"

// documentSchema describes a seed file. Case records stay free-form;
// only the reference collections have a fixed shape.
var documentSchema = map[string]any{
	"type":     "object",
	"required": []string{"version"},
	"properties": map[string]any{
		"version": map[string]any{"type": "string", "minLength": 1},
		"methodology": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"step_number", "step_name"},
				"properties": map[string]any{
					"step_number": map[string]any{"type": "integer", "minimum": 1},
					"step_name":   map[string]any{"type": "string", "minLength": 1},
					"summary":     map[string]any{"type": "string"},
				},
			},
		},
		"checklist": map[string]any{
			"type":     "object",
			"required": []string{"checklist_name", "assessment_stages"},
			"properties": map[string]any{
				"checklist_name": map[string]any{"type": "string", "minLength": 1},
				"version":        map[string]any{"type": "string"},
				"assessment_stages": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []string{"stage_name", "skills"},
						"properties": map[string]any{
							"stage_id":       map[string]any{"type": "string"},
							"stage_name":     map[string]any{"type": "string", "minLength": 1},
							"stage_name_alt": map[string]any{"type": "string"},
							"skills": map[string]any{
								"type": "array",
								"items": map[string]any{
									"type":     "object",
									"required": []string{"skill_item"},
									"properties": map[string]any{
										"skill_item": map[string]any{"type": "string"},
									},
								},
							},
						},
					},
				},
			},
		},
		"cases": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "object"},
		},
	},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants plain decoded JSON, not Go-typed maps.
		raw, err := json.Marshal(documentSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal seed schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(raw, &def); err != nil {
			compileErr = fmt.Errorf("parse seed schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// validate checks a decoded JSON value against the seed schema.
func validate(doc any) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("seed file does not match schema: %w", err)
	}
	return nil
}
