// Package progress provides the live progress line shown while an external
// process runs. The indicator is purely cosmetic: it carries no data back to
// the caller and shares nothing with it beyond its stop channel.
package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/pterm/pterm"
)

// Indicator repaints a spinner line with the elapsed time at a fixed interval.
// An Indicator is single-use: Start once, Stop once (Stop is idempotent and
// joins the repaint goroutine before returning).
type Indicator struct {
	interval time.Duration
	spinner  *pterm.SpinnerPrinter
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
}

// NewIndicator creates an indicator repainting at the given interval.
func NewIndicator(interval time.Duration) *Indicator {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Indicator{
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the spinner with the given activity message, e.g. "Compiling main.tex".
func (i *Indicator) Start(message string) error {
	if i.started {
		return fmt.Errorf("indicator already started")
	}
	i.started = true

	spinner, err := pterm.DefaultSpinner.
		WithRemoveWhenDone(true).
		WithText(i.text(message, 0)).
		Start()
	if err != nil {
		close(i.done)
		return err
	}
	i.spinner = spinner

	go i.run(message)
	return nil
}

// run repaints until told to stop.
func (i *Indicator) run(message string) {
	defer close(i.done)

	start := time.Now()
	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		select {
		case <-i.stop:
			return
		case <-ticker.C:
			i.spinner.UpdateText(i.text(message, time.Since(start)))
		}
	}
}

// Stop halts the repaint goroutine, waits for it to quiesce and removes the
// spinner line. Safe to call from a goroutine other than the starter, and
// safe to call more than once.
func (i *Indicator) Stop() {
	if !i.started {
		return
	}
	i.stopOnce.Do(func() {
		close(i.stop)
		<-i.done
		if i.spinner != nil {
			_ = i.spinner.Stop()
		}
	})
}

// text renders the spinner line body.
func (i *Indicator) text(message string, elapsed time.Duration) string {
	return fmt.Sprintf("%s... [%s] (Press Ctrl+C to cancel)", message, FormatElapsed(elapsed))
}

// FormatElapsed renders a duration as MM:SS.
func FormatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	minutes := total / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
