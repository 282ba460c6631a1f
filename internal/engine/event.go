package engine

// Phase tells where in a container operation an event was emitted.
type Phase int

const (
	// PhaseAnnounce reports the outcome of the state check.
	PhaseAnnounce Phase = iota
	// PhaseAction reports that a runtime call is about to be made.
	PhaseAction
	// PhaseResult closes the operation for one container.
	PhaseResult
)

func (p Phase) String() string {
	switch p {
	case PhaseAction:
		return "action"
	case PhaseResult:
		return "result"
	default:
		return "announce"
	}
}

// Severity classifies an event.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Event is a progress report for one step on one container.
type Event struct {
	// Container is the runtime name the step applies to.
	Container string
	Phase     Phase
	Severity  Severity
	Text      string
}
