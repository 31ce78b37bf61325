package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{llmEventsTable, generationEventsTable, playthroughTable, scenariosTable, "global_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.EventRepo().AppendGeneration(ctx, GenerationEventData{Theme: "business", Source: "template", Success: true}); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	events, err := s.EventRepo().QueryGenerations(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 || events[0].Theme != "business" {
		t.Fatalf("expected the event to survive reopen, got %+v", events)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var prev int64
	for i := range 5 {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if seq != prev+1 {
			t.Errorf("seq[%d] = %d, want %d", i, seq, prev+1)
		}
		prev = seq
	}
}

func TestSequenceSharedAcrossEventTypes(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Purpose: "scenario-gen"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.AppendGeneration(ctx, GenerationEventData{Source: "ai"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.AppendPlaythrough(ctx, PlaythroughEventData{Action: ActionStart}); err != nil {
		t.Fatal(err)
	}

	llm, _ := repo.QueryLLMEvents(ctx, QueryOpts{})
	gen, _ := repo.QueryGenerations(ctx, QueryOpts{})
	play, _ := repo.QueryPlaythroughs(ctx, QueryOpts{})
	if llm[0].Sequence != 1 || gen[0].Sequence != 2 || play[0].Sequence != 3 {
		t.Fatalf("sequences = %d, %d, %d; want 1, 2, 3", llm[0].Sequence, gen[0].Sequence, play[0].Sequence)
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	data := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-sonnet-4-5", Purpose: "scenario-gen", InputTokens: 100, OutputTokens: 2000, LatencyMs: 900, Success: true, RequestBody: "[user]\nhi", ResponseBody: "{}"},
		{Provider: "anthropic", Model: "claude-sonnet-4-5", Purpose: "scenario-gen", InputTokens: 120, OutputTokens: 0, LatencyMs: 100, Success: false, ErrorMessage: "rate limited"},
		{Provider: "openai", Model: "gpt-4o", Purpose: "repair", InputTokens: 50, OutputTokens: 40, LatencyMs: 300, Success: true},
	}
	for _, d := range data {
		if err := repo.AppendLLMRequest(ctx, d); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Purpose != "repair" {
		t.Fatalf("expected newest first, got %q", events[0].Purpose)
	}
	if events[2].RequestBody != "[user]\nhi" || !events[2].Success {
		t.Fatalf("fields not round-tripped: %+v", events[2])
	}
	if time.Since(events[0].Timestamp) > time.Minute {
		t.Fatalf("timestamp not set: %v", events[0].Timestamp)
	}

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1, Before: events[0].Sequence})
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(limited) != 1 || limited[0].ErrorMessage != "rate limited" {
		t.Fatalf("unexpected page: %+v", limited)
	}

	got, err := repo.GetLLMEvent(ctx, events[1].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.ErrorMessage != "rate limited" {
		t.Fatalf("unexpected event: %+v", got)
	}

	missing, err := repo.GetLLMEvent(ctx, 999)
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for missing event; got %v, %v", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("expected 2 purposes, got %+v", byPurpose)
	}
	gen := byPurpose[1]
	if gen.Purpose != "scenario-gen" || gen.Calls != 2 || gen.InputTokens != 220 || gen.AvgLatencyMs != 500 {
		t.Fatalf("unexpected scenario-gen usage: %+v", gen)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "claude-sonnet-4-5" || byModel[0].Calls != 1 {
		t.Fatalf("expected failed calls excluded from cost, got %+v", byModel)
	}
}

func TestPlaythroughEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []PlaythroughEventData{
		{SessionID: "s1", ScenarioID: "SC1", Learner: "ana", Action: ActionStart},
		{SessionID: "s2", ScenarioID: "SC1", Learner: "bo", Action: ActionStart},
		{
			SessionID: "s1", ScenarioID: "SC1", Learner: "ana", Action: ActionFinish,
			Earned: 20, Total: 30, Percentage: 66.67, Passed: false,
			Breakdown: []ConceptBreakdown{
				{Concept: "A", Points: 10, Earned: 10, ScorePercent: 100, Category: "mastered"},
				{Concept: "B", Points: 20, Earned: 10, ScorePercent: 50, Category: "partial"},
			},
		},
	}
	for _, e := range events {
		if err := repo.AppendPlaythrough(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	session, err := repo.SessionPlaythroughs(ctx, "s1")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if len(session) != 2 || session[0].Action != ActionStart || session[1].Action != ActionFinish {
		t.Fatalf("unexpected session events: %+v", session)
	}
	finish := session[1]
	if finish.Earned != 20 || finish.Percentage != 66.67 || finish.Passed {
		t.Fatalf("unexpected score fields: %+v", finish)
	}
	if len(finish.Breakdown) != 2 || finish.Breakdown[1].Category != "partial" {
		t.Fatalf("breakdown not round-tripped: %+v", finish.Breakdown)
	}
	if session[0].Breakdown != nil {
		t.Fatalf("start event should have no breakdown, got %+v", session[0].Breakdown)
	}

	all, err := repo.QueryPlaythroughs(ctx, QueryOpts{After: 1})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 events after sequence 1, got %d", len(all))
	}
}

func TestScenarioRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.ScenarioRepo()
	ctx := context.Background()

	latest, err := repo.Latest(ctx)
	if err != nil || latest != nil {
		t.Fatalf("expected nil, nil on empty repo; got %v, %v", latest, err)
	}

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := range 4 {
		sc := &SavedScenario{
			ScenarioID:   fmt.Sprintf("SC-%d", i),
			Title:        fmt.Sprintf("Scenario %d", i),
			Theme:        "healthcare",
			Source:       "template",
			ConceptCount: 2,
			NodeCount:    12 + i,
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
			Bundle:       []byte(fmt.Sprintf(`{"n":%d}`, i)),
		}
		if err := repo.Save(ctx, sc); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		if sc.ID == 0 {
			t.Fatalf("save %d did not set ID", i)
		}
	}

	err = repo.Save(ctx, &SavedScenario{ScenarioID: "SC-0"})
	if !errors.Is(err, ErrDuplicateScenario) {
		t.Fatalf("expected ErrDuplicateScenario, got %v", err)
	}

	latest, err = repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ScenarioID != "SC-3" || string(latest.Bundle) != `{"n":3}` {
		t.Fatalf("unexpected latest: %+v", latest)
	}
	if !latest.CreatedAt.Equal(base.Add(3 * time.Hour)) {
		t.Fatalf("created_at = %v", latest.CreatedAt)
	}

	got, err := repo.Get(ctx, "SC-1")
	if err != nil || got == nil || got.NodeCount != 13 {
		t.Fatalf("get: %+v, %v", got, err)
	}

	list, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ScenarioID != "SC-3" || list[0].Bundle != nil {
		t.Fatalf("unexpected list: %+v", list)
	}

	removed, err := repo.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if gone, _ := repo.Get(ctx, "SC-0"); gone != nil {
		t.Fatal("expected SC-0 pruned")
	}

	removed, err = repo.Prune(ctx, 5)
	if err != nil || removed != 0 {
		t.Fatalf("prune with fewer than keep: %d, %v", removed, err)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("EDQUEST_DB", filepath.Join(dir, "nested", "custom.db"))
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if p != filepath.Join(dir, "nested", "custom.db") {
		t.Fatalf("path = %q", p)
	}
	if _, err := os.Stat(filepath.Join(dir, "nested")); err != nil {
		t.Fatalf("parent dir not created: %v", err)
	}

	t.Setenv("EDQUEST_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if p != filepath.Join(dir, "edquest", "edquest.db") {
		t.Fatalf("path = %q", p)
	}
}
