// Package session wraps one learner's playthrough of a compiled scenario:
// the playback engine plus the start, restart and finish events recorded
// around it.
package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/edquest/internal/bundle"
	"github.com/abhisek/edquest/internal/logging"
	"github.com/abhisek/edquest/internal/playback"
	"github.com/abhisek/edquest/internal/results"
	"github.com/abhisek/edquest/internal/store"
)

// Recorder persists playthrough events. store.EventRepo satisfies it.
type Recorder interface {
	AppendPlaythrough(ctx context.Context, data store.PlaythroughEventData) error
}

// Session is one playthrough. Like the engine it wraps, it belongs to a
// single UI loop.
type Session struct {
	ID       string
	Learner  string
	Scenario *bundle.Scenario
	Engine   *playback.Engine

	// StartedAt is when the current run began; Restart resets it.
	StartedAt time.Time

	recorder Recorder
	logger   *slog.Logger
	finished bool
}

// New checks that the scenario is playable and returns a session that has
// not started. A nil recorder disables event recording.
func New(sc *bundle.Scenario, learner string, rec Recorder) (*Session, error) {
	eng, err := playback.New(sc.Graph, sc.Ledger)
	if err != nil {
		return nil, err
	}
	learner = strings.TrimSpace(learner)
	if learner == "" {
		learner = "Learner"
	}
	return &Session{
		ID:       uuid.NewString(),
		Learner:  learner,
		Scenario: sc,
		Engine:   eng,
		recorder: rec,
		logger:   logging.New("session"),
	}, nil
}

// Start begins the first run.
func (s *Session) Start(ctx context.Context) {
	s.Engine.Start()
	s.StartedAt = time.Now()
	s.finished = false
	s.record(ctx, store.ActionStart, nil)
}

// Restart throws away the current run and begins a new one.
func (s *Session) Restart(ctx context.Context) {
	s.Engine.Restart()
	s.StartedAt = time.Now()
	s.finished = false
	s.record(ctx, store.ActionRestart, nil)
}

// Choose follows a choice of the situation at address.
func (s *Session) Choose(ctx context.Context, address string, index int) error {
	if err := s.Engine.Choose(address, index); err != nil {
		return err
	}
	s.afterMove(ctx)
	return nil
}

// Continue moves past the current transition or outcome.
func (s *Session) Continue(ctx context.Context) error {
	if err := s.Engine.Continue(); err != nil {
		return err
	}
	s.afterMove(ctx)
	return nil
}

// Back steps to the previous node.
func (s *Session) Back() error {
	return s.Engine.Back()
}

// Results grades the current score record.
func (s *Session) Results() results.Results {
	return results.Aggregate(s.Scenario.Ledger, s.Engine.Scores())
}

// Finished reports whether the run reached the Results node.
func (s *Session) Finished() bool { return s.Engine.Finished() }

func (s *Session) afterMove(ctx context.Context) {
	if !s.Engine.Finished() || s.finished {
		return
	}
	s.finished = true
	r := s.Results()
	s.record(ctx, store.ActionFinish, &r)
}

func (s *Session) record(ctx context.Context, action string, r *results.Results) {
	if s.recorder == nil {
		return
	}
	data := store.PlaythroughEventData{
		SessionID:  s.ID,
		ScenarioID: s.Scenario.ID,
		Learner:    s.Learner,
		Action:     action,
		Total:      s.Scenario.Ledger.TotalPoints(),
	}
	if r != nil {
		data.Earned = r.TotalEarned
		data.Percentage = float64(r.Percentage)
		data.Passed = r.Passed
		data.Breakdown = Breakdown(*r)
	}
	if err := s.recorder.AppendPlaythrough(ctx, data); err != nil {
		s.logger.Warn("failed to record playthrough event", "action", action, "error", err)
	}
}

// Breakdown converts graded results into the stored per-concept rows.
func Breakdown(r results.Results) []store.ConceptBreakdown {
	out := make([]store.ConceptBreakdown, 0, len(r.Concepts))
	for _, c := range r.Concepts {
		out = append(out, store.ConceptBreakdown{
			Concept:      c.Concept,
			Points:       c.Points,
			Earned:       c.Earned,
			ScorePercent: c.ScorePercent,
			Category:     string(c.Category),
		})
	}
	return out
}
