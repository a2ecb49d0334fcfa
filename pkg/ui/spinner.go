package ui

import (
	"time"

	"github.com/schollz/progressbar/v3"
)

const spinInterval = 100 * time.Millisecond

// Spinner shows activity on stderr while a request is in flight. On a
// non-interactive stderr it draws nothing and only the final line is printed.
type Spinner struct {
	t    *Terminal
	bar  *progressbar.ProgressBar
	stop chan struct{}
	done chan struct{}
}

// Spinner starts a spinner labelled text.
func (t *Terminal) Spinner(text string) *Spinner {
	s := &Spinner{t: t}
	if !t.spinners {
		return s
	}

	s.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(t.errOut),
		progressbar.OptionSetDescription(text),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
	)
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.spin()

	return s
}

func (s *Spinner) spin() {
	defer close(s.done)

	ticker := time.NewTicker(spinInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			unlock := s.t.coord.Lock()
			_ = s.bar.Add(1)
			unlock()
		}
	}
}

// Stop removes the spinner without printing anything. Safe to call twice.
func (s *Spinner) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop = nil

	unlock := s.t.coord.Lock()
	_ = s.bar.Finish()
	unlock()
}

// Succeed replaces the spinner with a green check mark line.
func (s *Spinner) Succeed(format string, args ...any) {
	s.Stop()
	s.t.status(s.t.errOut, green, "✓", format, args...)
}

// Fail replaces the spinner with a red cross line.
func (s *Spinner) Fail(format string, args ...any) {
	s.Stop()
	s.t.status(s.t.errOut, red, "✗", format, args...)
}
