package core

import (
	"sync"
	"time"
)

// Synthetic extraction progress.
const (
	DefaultProgressTick = 100 * time.Millisecond
	progressStep        = 10
	progressCap         = 90
	progressDone        = 100
)

// progressTicker reports a synthetic progress value that grows by
// progressStep every interval until progressCap. It belongs to the
// Extracting state and must be stopped on every exit from it.
type progressTicker struct {
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func startProgress(interval time.Duration, report func(int)) *progressTicker {
	if interval <= 0 {
		interval = DefaultProgressTick
	}
	t := &progressTicker{
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		value := 0
		for {
			select {
			case <-t.quit:
				return
			case <-ticker.C:
				value += progressStep
				if value > progressCap {
					value = progressCap
				}
				report(value)
				if value == progressCap {
					return
				}
			}
		}
	}()

	return t
}

// Stop cancels the ticker and waits for its goroutine to exit. Only the first
// call cancels; it reports whether this call did. No report is delivered
// after Stop returns.
func (t *progressTicker) Stop() bool {
	cancelled := false
	t.once.Do(func() {
		close(t.quit)
		cancelled = true
	})
	<-t.done
	return cancelled
}
