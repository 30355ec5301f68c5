// Package evaluation grades a finished history-taking conversation against
// the communication skills checklist and the GVCCCM methodology.
package evaluation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tu613/vet-learning-app/internal/conversation"
	"github.com/tu613/vet-learning-app/internal/llm"
	"github.com/tu613/vet-learning-app/internal/logger"
	"github.com/tu613/vet-learning-app/internal/persona"
	"github.com/tu613/vet-learning-app/internal/refdata"
	"github.com/tu613/vet-learning-app/internal/store"
)

// Input is everything needed to grade one session.
type Input struct {
	UserName   string
	UserRole   string
	Case       refdata.CaseScenario
	Transcript conversation.Transcript

	// Rendered grounding blocks, normally from grounding.FormatMethodology
	// and grounding.FormatChecklist.
	MethodologyContext string
	ChecklistContext   string
}

// Result is a successful evaluation. LogErr is set when the practice log
// could not be written; the feedback is still valid.
type Result struct {
	Feedback string
	Model    string
	LogErr   error
}

// Evaluator issues the grading request and records the practice log.
type Evaluator struct {
	provider llm.Provider
	logs     store.PracticeLogRepo
	log      *logger.Logger
	language string
	now      func() time.Time
}

// New creates an Evaluator. logs may be nil to skip practice logging.
func New(provider llm.Provider, logs store.PracticeLogRepo, language string, log *logger.Logger) *Evaluator {
	if log == nil {
		log = logger.Nop()
	}
	if language == "" {
		language = persona.DefaultLanguage
	}
	return &Evaluator{
		provider: provider,
		logs:     logs,
		log:      log,
		language: language,
		now:      time.Now,
	}
}

// Evaluate sends one stateless request containing the whole transcript.
// A generation failure is returned as is and nothing is logged.
func (e *Evaluator) Evaluate(ctx context.Context, in Input) (*Result, error) {
	req := llm.Request{
		System: BuildInstruction(in.MethodologyContext, in.ChecklistContext, e.language),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildContent(in.Transcript)},
		},
	}

	start := e.now()
	resp, err := e.provider.Generate(llm.WithPurpose(ctx, llm.PurposeEvaluation), req)
	if err != nil {
		e.log.Warn("evaluation failed", "case", in.Case.ID, "turns", in.Transcript.Len(), "error", err)
		return nil, fmt.Errorf("evaluate conversation: %w", err)
	}
	e.log.Info("evaluation complete", "case", in.Case.ID, "turns", in.Transcript.Len(),
		"model", resp.Model, "elapsed", e.now().Sub(start))

	res := &Result{Feedback: resp.Text, Model: resp.Model}
	if e.logs != nil {
		res.LogErr = e.writeLog(ctx, in, res)
	}
	return res, nil
}

func (e *Evaluator) writeLog(ctx context.Context, in Input, res *Result) error {
	entry := &store.PracticeLogEntry{
		Timestamp:   e.now(),
		UserName:    in.UserName,
		UserRole:    in.UserRole,
		CaseID:      in.Case.ID,
		CaseName:    in.Case.Title(),
		ChatHistory: ChatTurns(in.Transcript),
		Feedback:    res.Feedback,
		Model:       res.Model,
	}
	// The log write outlives a cancelled evaluation context.
	if err := e.logs.AppendPracticeLog(context.WithoutCancel(ctx), entry); err != nil {
		e.log.Warn("practice log write failed", "case", in.Case.ID, "error", err)
		return err
	}
	e.log.Debug("practice log written", "id", entry.ID)
	return nil
}

// SerializeTranscript renders one "Label: content" line per turn in order.
func SerializeTranscript(t conversation.Transcript) string {
	lines := make([]string, len(t))
	for i, turn := range t {
		lines[i] = turn.Role.Label() + ": " + turn.Content
	}
	return strings.Join(lines, "\n")
}

// ChatTurns converts t to the persisted practice log shape.
func ChatTurns(t conversation.Transcript) []store.ChatTurn {
	out := make([]store.ChatTurn, len(t))
	for i, turn := range t {
		out[i] = store.ChatTurn{Role: turn.Role.String(), Content: turn.Content}
	}
	return out
}

func buildContent(t conversation.Transcript) string {
	history := SerializeTranscript(t)
	if history == "" {
		history = "(the student asked no questions)"
	}
	return "Full conversation transcript (history taking):\n\n" + history +
		"\n\nEvaluate the history taking above and give the feedback in the required format."
}
