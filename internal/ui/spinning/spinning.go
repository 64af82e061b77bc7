// Package spinning provides a spinning symbol followed by a status message, to use while
// long simulations run in the background. It also provides the interrupt handling used by
// the binaries.
package spinning

import (
	"context"
	"fmt"
	"io"
	"k8s.io/klog/v2"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

var (
	ThemeAscii = []rune(`|/-\`)
	ThemeDots  = []rune("⣾⣽⣻⢿⡿⣟⣯⣷")

	// Theme defaults to ThemeDots, but it can be set to anything else.
	Theme = ThemeDots

	// Period between updates of the spinner.
	Period = 250 * time.Millisecond
)

// SafeInterrupt will capture SigInt (Ctrl+C) and SigTerm and call the provided onInterrupt.
// If the program haven't exited after gracePeriod, it will call Reset to reset the terminal
// and exit.
func SafeInterrupt(onInterrupt func(), gracePeriod time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigChan
		fmt.Println()
		klog.Errorf("Got interrupted (signal %q), shutting down... (%s)", s, gracePeriod)
		if onInterrupt != nil {
			go onInterrupt()
		}

		// Wait for gracePeriod before exiting.
		time.Sleep(gracePeriod)
		Reset()
		klog.Fatalf("Graceful shutting down %s period expired, exiting.", gracePeriod)
	}()
}

// Reset terminal: make cursor visible, restore default terminal colors.
func Reset() {
	fmt.Print("\033[?25h\033[39;49;0m\n")
}

// Spinning displays a spinner and a status line, on a separate goroutine, until Done is called.
type Spinning struct {
	wg     sync.WaitGroup
	cancel func()
}

// New starts a spinning display on os.Stdout. status is called at every update to
// get the message displayed after the spinner, and it may be nil.
func New(ctx context.Context, status func() string) *Spinning {
	return NewWithWriter(ctx, os.Stdout, status)
}

// NewWithWriter is like New, but writes to w.
func NewWithWriter(ctx context.Context, w io.Writer, status func() string) *Spinning {
	s := &Spinning{}
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(Period)
		defer ticker.Stop()
		// Hide cursor, and restore it at the end.
		_, _ = fmt.Fprint(w, "\033[?25l")
		defer func() { _, _ = fmt.Fprint(w, "\033[?25h") }()

		theme := Theme
		for idx := 0; ; idx = (idx + 1) % len(theme) {
			msg := ""
			if status != nil {
				msg = status()
			}
			// Carriage return, spinner, message and clear to the end of the line.
			_, _ = fmt.Fprintf(w, "\r%c %s\033[0K", theme[idx], msg)
			select {
			case <-ctx.Done():
				_, _ = fmt.Fprint(w, "\r\033[0K")
				return
			case <-ticker.C:
				// continue
			}
		}
	}()
	return s
}

// Done stops the spinner and waits for it to clean up its line.
func (s *Spinning) Done() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.wg.Wait()
}
