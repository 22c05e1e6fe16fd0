package engine

// State is a stage of one conversion run.
type State int

const (
	StateIdle State = iota
	StateParsingGeometry
	StateExtractingElements
	StateResolvingStyles
	StateOrdering
	StatePlacing
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateIdle:               "idle",
	StateParsingGeometry:    "parsing_geometry",
	StateExtractingElements: "extracting_elements",
	StateResolvingStyles:    "resolving_styles",
	StateOrdering:           "ordering",
	StatePlacing:            "placing",
	StateDone:               "done",
	StateFailed:             "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether the run has finished.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
