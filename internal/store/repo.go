package store

import (
	"context"
	"time"
)

// QueryOpts filters and pages event queries. Results are newest first.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// EventMeta is common to every stored event.
type EventMeta struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// LLMRequestEventData is one provider call.
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

type LLMRequestEvent struct {
	EventMeta
	LLMRequestEventData
}

// PurposeUsage aggregates LLM calls by purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int
}

// ModelUsage aggregates LLM calls by model for cost estimates.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// GenerationEventData is one attempt to produce a scenario, AI or
// template.
type GenerationEventData struct {
	Theme          string
	Source         string
	Success        bool
	ErrorMessage   string
	FallbackReason string
	ScenarioID     string
	ConceptCount   int
	NodeCount      int
	WarningCount   int
}

type GenerationEvent struct {
	EventMeta
	GenerationEventData
}

// Playthrough actions.
const (
	ActionStart   = "start"
	ActionRestart = "restart"
	ActionFinish  = "finish"
)

// ConceptBreakdown is the per-concept part of a finished playthrough.
type ConceptBreakdown struct {
	Concept      string `json:"concept"`
	Points       int    `json:"points"`
	Earned       int    `json:"earned"`
	ScorePercent int    `json:"score_percent"`
	Category     string `json:"category"`
}

// PlaythroughEventData is a session lifecycle event. Score fields are
// only meaningful for ActionFinish.
type PlaythroughEventData struct {
	SessionID  string
	ScenarioID string
	Learner    string
	Action     string
	Earned     int
	Total      int
	Percentage float64
	Passed     bool
	Breakdown  []ConceptBreakdown
}

type PlaythroughEvent struct {
	EventMeta
	PlaythroughEventData
}

// EventRepo appends to and queries the event log.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
	// GetLLMEvent returns nil if id does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	AppendGeneration(ctx context.Context, data GenerationEventData) error
	QueryGenerations(ctx context.Context, opts QueryOpts) ([]GenerationEvent, error)

	AppendPlaythrough(ctx context.Context, data PlaythroughEventData) error
	QueryPlaythroughs(ctx context.Context, opts QueryOpts) ([]PlaythroughEvent, error)
	// SessionPlaythroughs returns one session's events oldest first.
	SessionPlaythroughs(ctx context.Context, sessionID string) ([]PlaythroughEvent, error)
}

// SavedScenario is a compiled scenario bundle plus listing metadata.
type SavedScenario struct {
	ID           int
	ScenarioID   string
	Title        string
	Theme        string
	Source       string
	ConceptCount int
	NodeCount    int
	CreatedAt    time.Time
	// Bundle is the serialized bundle. List leaves it empty.
	Bundle []byte
}

// ScenarioRepo keeps compiled scenarios for replay.
type ScenarioRepo interface {
	Save(ctx context.Context, sc *SavedScenario) error
	// Get returns nil if scenarioID does not exist.
	Get(ctx context.Context, scenarioID string) (*SavedScenario, error)
	// Latest returns the most recently saved scenario, or nil if none exist.
	Latest(ctx context.Context) (*SavedScenario, error)
	List(ctx context.Context, limit int) ([]SavedScenario, error)
	// Prune deletes all but the keep most recent scenarios and reports how
	// many were removed.
	Prune(ctx context.Context, keep int) (int, error)
}
