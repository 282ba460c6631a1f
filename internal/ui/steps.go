package ui

import "sync"

// Phase is the point a step line stands for in a container's lifecycle.
type Phase int

const (
	// PhaseNote is an informational line, such as "already running".
	PhaseNote Phase = iota
	// PhaseWorking marks a runtime call in flight; it shows a spinner.
	PhaseWorking
	// PhaseFinished closes the container's steps with its outcome.
	PhaseFinished
)

// Outcome qualifies a finished step. Notes and working steps carry
// OutcomeNone.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeOK
	OutcomeFailed
)

// Steps renders the per-container lines of one command:
//
//	  shop.db: already stopped      (note, faint)
//	  ⠙ shop.web: stopping          (working, replaced by the next line)
//	  ✓ shop.web                    (finished ok)
//	  ✗ shop.web: exit status 1     (finished failed)
//
// At most one step is in flight at a time.
type Steps struct {
	u *UI

	mu      sync.Mutex
	working *spinner
}

// Steps starts a step renderer writing to u.
func (u *UI) Steps() *Steps {
	return &Steps{u: u}
}

// Step renders one line for subject. Any running spinner is cleared first.
func (s *Steps) Step(subject string, phase Phase, outcome Outcome, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clear()
	u := s.u
	switch phase {
	case PhaseNote:
		u.line(u.paint(u.styles.faint, "  "+subject+": "+text))
	case PhaseWorking:
		s.working = u.spin(subject + ": " + text)
	case PhaseFinished:
		if outcome == OutcomeFailed {
			u.line(u.pick(u.styles.fail.Render("  ✗ "+subject+": "+text), "  FAILED "+subject+": "+text))
			return
		}
		u.line(u.pick(u.styles.ok.Render("  ✓ "+subject), "  ok "+subject))
	}
}

// Close clears a spinner left running, e.g. after an interrupted call.
func (s *Steps) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
}

func (s *Steps) clear() {
	if s.working != nil {
		s.working.halt()
		s.working = nil
	}
}
