package cmd

import (
	"github.com/fgrehm/dockman/internal/engine"
	"github.com/fgrehm/dockman/internal/ui"
)

// progress forwards engine events to the step renderer.
type progress struct {
	steps *ui.Steps
}

func newProgress(u *ui.UI) *progress {
	return &progress{steps: u.Steps()}
}

func (p *progress) handle(ev engine.Event) {
	p.steps.Step(ev.Container, stepPhase(ev.Phase), stepOutcome(ev.Severity), ev.Text)
}

// close clears a spinner left behind when an operation is interrupted.
func (p *progress) close() {
	p.steps.Close()
}

func stepPhase(ph engine.Phase) ui.Phase {
	switch ph {
	case engine.PhaseAction:
		return ui.PhaseWorking
	case engine.PhaseResult:
		return ui.PhaseFinished
	default:
		return ui.PhaseNote
	}
}

func stepOutcome(s engine.Severity) ui.Outcome {
	switch s {
	case engine.SeveritySuccess:
		return ui.OutcomeOK
	case engine.SeverityError:
		return ui.OutcomeFailed
	default:
		return ui.OutcomeNone
	}
}
