package refdata

import (
	"context"
	"fmt"
	"time"

	"github.com/tu613/vet-learning-app/internal/logger"
)

// Source is the reference/document store.
type Source interface {
	// MethodologySteps returns all steps sorted ascending by step number.
	MethodologySteps(ctx context.Context) ([]MethodologyStep, error)

	// Checklist returns the checklist with the given name, or nil if absent.
	Checklist(ctx context.Context, name string) (*Checklist, error)

	// Cases returns every case scenario.
	Cases(ctx context.Context) ([]CaseScenario, error)
}

// Reference is the grounding data used by the evaluator. Warnings carry
// non-fatal fetch problems for display; the affected slice is left empty.
type Reference struct {
	Steps            []MethodologyStep
	Stages           []Stage
	ChecklistVersion string
	Warnings         []string
}

// Library serves reference data through TTL caches and degrades to empty
// results on fetch errors.
type Library struct {
	src           Source
	checklistName string
	log           *logger.Logger

	steps     *Cache[[]MethodologyStep]
	checklist *Cache[*Checklist]
}

// NewLibrary creates a Library over src.
func NewLibrary(src Source, checklistName string, ttl time.Duration, log *logger.Logger) *Library {
	if log == nil {
		log = logger.Nop()
	}
	l := &Library{src: src, checklistName: checklistName, log: log}
	l.steps = NewCache(ttl, src.MethodologySteps)
	l.checklist = NewCache(ttl, func(ctx context.Context) (*Checklist, error) {
		return src.Checklist(ctx, checklistName)
	})
	return l
}

// Reference returns cached reference data, refetching expired entries.
func (l *Library) Reference(ctx context.Context) Reference {
	steps, stepsErr := l.steps.Get(ctx)
	cl, clErr := l.checklist.Get(ctx)
	return l.assemble(steps, stepsErr, cl, clErr)
}

// Refresh forces both reference collections to be refetched.
func (l *Library) Refresh(ctx context.Context) Reference {
	steps, stepsErr := l.steps.Refresh(ctx)
	cl, clErr := l.checklist.Refresh(ctx)
	return l.assemble(steps, stepsErr, cl, clErr)
}

func (l *Library) assemble(steps []MethodologyStep, stepsErr error, cl *Checklist, clErr error) Reference {
	var ref Reference

	if stepsErr != nil {
		l.log.Warn("fetch methodology steps failed", "error", stepsErr)
		ref.Warnings = append(ref.Warnings, fmt.Sprintf("Could not load methodology steps: %v", stepsErr))
	} else {
		ref.Steps = steps
		l.log.Debug("methodology steps loaded", "count", len(steps))
	}

	switch {
	case clErr != nil:
		l.log.Warn("fetch checklist failed", "name", l.checklistName, "error", clErr)
		ref.Warnings = append(ref.Warnings, fmt.Sprintf("Could not load scoring checklist: %v", clErr))
	case cl == nil:
		l.log.Warn("checklist not found", "name", l.checklistName)
		ref.Warnings = append(ref.Warnings, fmt.Sprintf("Scoring checklist %q not found", l.checklistName))
	default:
		ref.Stages = cl.Stages
		ref.ChecklistVersion = cl.Version
		l.log.Debug("checklist loaded", "version", cl.Version, "stages", len(cl.Stages))
	}

	return ref
}

// Cases fetches the case list. Cases are mutable externally, so they are
// not cached.
func (l *Library) Cases(ctx context.Context) ([]CaseScenario, error) {
	cases, err := l.src.Cases(ctx)
	if err != nil {
		l.log.Warn("fetch cases failed", "error", err)
		return nil, fmt.Errorf("load cases: %w", err)
	}
	return cases, nil
}
