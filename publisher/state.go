package publisher

// State is a step of a publish run.
type State int

const (
	StateIdle State = iota
	StateRendering
	StateResolvingTarget
	StateSubmitting
	StateFetchingResult
	StateDisplaying
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	case StateResolvingTarget:
		return "resolving_target"
	case StateSubmitting:
		return "submitting"
	case StateFetchingResult:
		return "fetching_result"
	case StateDisplaying:
		return "displaying"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
