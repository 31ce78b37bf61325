package playback

import "fmt"

// ErrorKind classifies a rejected engine call.
type ErrorKind string

const (
	// InvalidChoice: stale address, index out of range, or the current
	// node is not a situation.
	InvalidChoice ErrorKind = "invalid_choice"
	// NoHistory: back with nothing behind the current node.
	NoHistory ErrorKind = "no_history"
	// NotStarted: navigation before Start.
	NotStarted ErrorKind = "not_started"
	// NotWaypoint: continue on a node that is not a transition or outcome.
	NotWaypoint ErrorKind = "not_waypoint"
	// Finished: anything but restart on the Results node.
	Finished ErrorKind = "finished"
)

// EngineError reports a call the engine refused. State is unchanged.
type EngineError struct {
	Kind    ErrorKind
	Address string
	Index   int
	Message string
}

func (e *EngineError) Error() string {
	msg := fmt.Sprintf("playback %s at %q", e.Kind, e.Address)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}
