package ui

import (
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner redraws "  <frame> msg" in place until halted. Off a terminal it
// prints "  msg..." once and does nothing else.
type spinner struct {
	quit chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func (u *UI) spin(msg string) *spinner {
	sp := &spinner{quit: make(chan struct{})}
	if !u.isTTY {
		u.line("  " + msg + "...")
		return sp
	}

	sp.wg.Add(1)
	go func() {
		defer sp.wg.Done()
		tick := time.NewTicker(spinnerInterval)
		defer tick.Stop()

		for i := 0; ; i++ {
			frame := spinnerFrames[i%len(spinnerFrames)]
			u.write("\r  " + u.paint(u.styles.frame, frame) + " " + msg)
			select {
			case <-sp.quit:
				u.write("\r\033[K")
				return
			case <-tick.C:
			}
		}
	}()
	return sp
}

// halt stops the animation and clears its line. Safe to call more than once.
func (sp *spinner) halt() {
	sp.once.Do(func() { close(sp.quit) })
	sp.wg.Wait()
}
