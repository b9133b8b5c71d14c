package narrator

// State of the narration engine.
type State int

const (
	// StateIdle means no narration is running. This is both the initial
	// and the terminal state; failures land here with Status.Err set.
	StateIdle State = iota
	// StatePlaying means the narration loop is speaking chapters.
	StatePlaying
	// StatePaused means a session exists but its loop has been cancelled.
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Status is the externally observable narration state. It is replaced
// wholesale on every change and handed out by value, so callers always see a
// consistent snapshot.
type Status struct {
	State       State
	Chapter     int    // index of the chapter being (or about to be) narrated
	CurrentText string // short preview of what is being spoken
	Err         string // set only when a session died; cleared by the next Start/Stop
}
