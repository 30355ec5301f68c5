package store

import (
	"context"
	"time"

	"github.com/tu613/vet-learning-app/internal/refdata"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// ReferenceRepo serves the reference collections and the case list, and
// accepts the writes made by the seed command.
type ReferenceRepo interface {
	refdata.Source

	// ReplaceMethodology swaps the whole step list atomically.
	ReplaceMethodology(ctx context.Context, steps []refdata.MethodologyStep) error

	// UpsertChecklist inserts or replaces the checklist keyed by its name.
	UpsertChecklist(ctx context.Context, cl refdata.Checklist) error

	// UpsertCase inserts or replaces one case document.
	UpsertCase(ctx context.Context, c refdata.CaseScenario) error

	// DeleteCase removes a case. Missing IDs are not an error.
	DeleteCase(ctx context.Context, id string) error
}

// ChatTurn is one transcript line as persisted in the practice log.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PracticeLogEntry is the record written once at the end of a session.
type PracticeLogEntry struct {
	ID          string
	Timestamp   time.Time
	UserName    string
	UserRole    string
	CaseID      string
	CaseName    string
	ChatHistory []ChatTurn
	Feedback    string
	Model       string
}

// PracticeLogRepo is the append-only practice log sink.
type PracticeLogRepo interface {
	// AppendPracticeLog writes one entry. An empty ID is assigned a UUID and
	// a zero Timestamp is set to now.
	AppendPracticeLog(ctx context.Context, e *PracticeLogEntry) error

	// CountPracticeLogs returns the number of stored entries.
	CountPracticeLogs(ctx context.Context) (int, error)
}

// PracticeHistory reads the practice log back, newest first.
type PracticeHistory interface {
	// QueryPracticeLogs returns entries for userName, or for everyone when
	// userName is empty. Only opts.Limit, From and To apply.
	QueryPracticeLogs(ctx context.Context, userName string, opts QueryOpts) ([]PracticeLogEntry, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates events per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates events per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
