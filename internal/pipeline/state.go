package pipeline

// State is the position of a run in its linear lifecycle.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateCleaning
	StateUploading
	StateLoading
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:      "idle",
	StateFetching:  "fetching",
	StateCleaning:  "cleaning",
	StateUploading: "uploading",
	StateLoading:   "loading",
	StateDone:      "done",
	StateFailed:    "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// next returns the state that follows s on success.
func (s State) next() State {
	switch s {
	case StateIdle:
		return StateFetching
	case StateFetching:
		return StateCleaning
	case StateCleaning:
		return StateUploading
	case StateUploading:
		return StateLoading
	case StateLoading:
		return StateDone
	default:
		return s
	}
}
