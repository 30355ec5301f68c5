package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tu613/vet-learning-app/internal/refdata"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open("mongo", "mongodb://localhost"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{tableMethodology, tableChecklists, tableCases, tablePractice, tableLLMEvents, "event_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMigrateIsRepeatable(t *testing.T) {
	s := openTestStore(t)
	if err := s.migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	var name string
	err := s.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_practice_user_created'",
	).Scan(&name)
	if err != nil {
		t.Errorf("practice log index: %v", err)
	}
}

func TestMethodologySortedAscending(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReferenceRepo()
	ctx := context.Background()

	err := repo.ReplaceMethodology(ctx, []refdata.MethodologyStep{
		{StepNumber: 3, StepName: "Gathering", Summary: "c"},
		{StepNumber: 1, StepName: "Preparation", Summary: "a"},
		{StepNumber: 2, StepName: "Initiating", Summary: "b"},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	steps, err := repo.MethodologySteps(ctx)
	if err != nil {
		t.Fatalf("steps: %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("len = %d, want 3", len(steps))
	}
	for i, st := range steps {
		if st.StepNumber != i+1 {
			t.Errorf("steps[%d].StepNumber = %d, want %d", i, st.StepNumber, i+1)
		}
	}

	// Replacing drops the previous set.
	if err := repo.ReplaceMethodology(ctx, []refdata.MethodologyStep{{StepNumber: 9, StepName: "Only"}}); err != nil {
		t.Fatalf("replace again: %v", err)
	}
	steps, _ = repo.MethodologySteps(ctx)
	if len(steps) != 1 || steps[0].StepNumber != 9 {
		t.Errorf("steps after replace = %+v", steps)
	}
}

func TestChecklistUpsertAndMissing(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReferenceRepo()
	ctx := context.Background()

	cl, err := repo.Checklist(ctx, "absent")
	if err != nil {
		t.Fatalf("checklist (absent): %v", err)
	}
	if cl != nil {
		t.Fatal("expected nil checklist when none exist")
	}

	in := refdata.Checklist{
		Name:    "cc",
		Version: "1.0.0",
		Stages: []refdata.Stage{
			{ID: "a", Name: "Initiating", Skills: []refdata.Skill{{Item: "Greets"}}},
		},
	}
	if err := repo.UpsertChecklist(ctx, in); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	in.Version = "1.1.0"
	if err := repo.UpsertChecklist(ctx, in); err != nil {
		t.Fatalf("upsert again: %v", err)
	}

	cl, err = repo.Checklist(ctx, "cc")
	if err != nil {
		t.Fatalf("checklist: %v", err)
	}
	if cl == nil {
		t.Fatal("expected checklist")
	}
	if cl.Version != "1.1.0" {
		t.Errorf("version = %q, want 1.1.0", cl.Version)
	}
	if len(cl.Stages) != 1 || cl.Stages[0].Skills[0].Item != "Greets" {
		t.Errorf("stages = %+v", cl.Stages)
	}
}

func TestCasesRoundTripDocument(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReferenceRepo()
	ctx := context.Background()

	err := repo.UpsertCase(ctx, refdata.CaseScenario{ID: "2", Doc: map[string]any{
		"pet_name":   "Mimi",
		"owner_role": map[string]any{"persona": "worried about cost"},
	}})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.UpsertCase(ctx, refdata.CaseScenario{ID: "1", Doc: map[string]any{"pet_name": "Philippe"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	cases, err := repo.Cases(ctx)
	if err != nil {
		t.Fatalf("cases: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("len = %d, want 2", len(cases))
	}
	if cases[0].ID != "1" {
		t.Errorf("cases[0].ID = %q, want 1", cases[0].ID)
	}
	if got := cases[1].Field(refdata.FieldPersona); got != "worried about cost" {
		t.Errorf("persona = %q", got)
	}

	if err := repo.DeleteCase(ctx, "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	cases, _ = repo.Cases(ctx)
	if len(cases) != 1 {
		t.Errorf("len after delete = %d, want 1", len(cases))
	}
}

func TestCasesNumericIDsInNumericOrder(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReferenceRepo()
	ctx := context.Background()

	for _, id := range []string{"10", "b-case", "2", "1", "a-case"} {
		if err := repo.UpsertCase(ctx, refdata.CaseScenario{ID: id, Doc: map[string]any{"pet_name": id}}); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	cases, err := repo.Cases(ctx)
	if err != nil {
		t.Fatalf("cases: %v", err)
	}
	var ids []string
	for _, c := range cases {
		ids = append(ids, c.ID)
	}
	want := []string{"1", "2", "10", "a-case", "b-case"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestAppendPracticeLog(t *testing.T) {
	s := openTestStore(t)
	repo := s.PracticeLogRepo()
	ctx := context.Background()

	e := &PracticeLogEntry{
		UserName: "Nok",
		UserRole: "student",
		CaseID:   "1",
		CaseName: "Philippe",
		ChatHistory: []ChatTurn{
			{Role: "User", Content: "What brings you in?"},
			{Role: "Owner", Content: "He's been limping."},
		},
		Feedback: "Good opening.",
		Model:    "mock",
	}
	if err := repo.AppendPracticeLog(ctx, e); err != nil {
		t.Fatalf("append: %v", err)
	}
	if e.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if e.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	n, err := repo.CountPracticeLogs(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}

	var chat string
	if err := s.DB().QueryRow("SELECT chat_history FROM practice_logs WHERE id = ?", e.ID).Scan(&chat); err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(chat, "He's been limping.") {
		t.Errorf("chat_history = %s", chat)
	}
}

func TestQueryPracticeLogs(t *testing.T) {
	s := openTestStore(t)
	repo := s.PracticeLogRepo()
	history := s.PracticeHistory()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := []*PracticeLogEntry{
		{Timestamp: base, UserName: "Nok", CaseName: "Limping Dog", Feedback: "first"},
		{Timestamp: base.Add(time.Hour), UserName: "Ploy", CaseName: "Vomiting Cat", Feedback: "other user"},
		{Timestamp: base.Add(2 * time.Hour), UserName: "Nok", CaseName: "Vomiting Cat", Feedback: "second",
			ChatHistory: []ChatTurn{{Role: "user", Content: "Hi"}, {Role: "owner", Content: "Hello doctor"}}},
	}
	for _, e := range entries {
		if err := repo.AppendPracticeLog(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := history.QueryPracticeLogs(ctx, "Nok", QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Feedback != "second" || got[1].Feedback != "first" {
		t.Errorf("order = %q,%q, want newest first", got[0].Feedback, got[1].Feedback)
	}
	if len(got[0].ChatHistory) != 2 || got[0].ChatHistory[1].Content != "Hello doctor" {
		t.Errorf("chat history = %+v", got[0].ChatHistory)
	}
	if !got[0].Timestamp.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("timestamp = %v", got[0].Timestamp)
	}

	all, err := history.QueryPracticeLogs(ctx, "", QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	if len(all) != 2 || all[1].UserName != "Ploy" {
		t.Errorf("all = %+v", all)
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	records := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-pro", Purpose: "owner-chat", InputTokens: 100, OutputTokens: 20, LatencyMs: 300, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-pro", Purpose: "owner-chat", InputTokens: 120, OutputTokens: 30, LatencyMs: 500, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-pro", Purpose: "evaluation", InputTokens: 900, OutputTokens: 400, LatencyMs: 4000, Success: true, RequestBody: "[system]\nhi"},
		{Provider: "gemini", Model: "gemini-2.5-pro", Purpose: "evaluation", Success: false, ErrorMessage: "boom"},
	}
	for i, r := range records {
		if err := repo.AppendLLMRequest(ctx, r); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].ID != 4 || events[1].ID != 3 {
		t.Errorf("ids = %d,%d, want 4,3", events[0].ID, events[1].ID)
	}
	if events[0].Success || events[0].ErrorMessage != "boom" {
		t.Errorf("event 4 = %+v", events[0])
	}
	if time.Since(events[0].Timestamp) > time.Minute {
		t.Errorf("timestamp = %v", events[0].Timestamp)
	}

	e, err := repo.GetLLMEvent(ctx, 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.RequestBody != "[system]\nhi" {
		t.Errorf("event 3 = %+v", e)
	}
	missing, err := repo.GetLLMEvent(ctx, 99)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing event")
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("purposes = %d, want 2", len(byPurpose))
	}
	chat := byPurpose[1]
	if chat.Purpose != "owner-chat" || chat.Calls != 2 || chat.InputTokens != 220 || chat.AvgLatencyMs != 400 {
		t.Errorf("owner-chat usage = %+v", chat)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 1 || byModel[0].Calls != 3 {
		t.Errorf("model usage = %+v", byModel)
	}
}
