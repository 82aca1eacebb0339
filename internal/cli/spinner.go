package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/edgepersist/pkg/observability"
)

// Spinner provides a simple progress indicator with context cancellation support.
// It shows the elapsed time next to the message, since snapshot loads can
// take minutes.
type Spinner struct {
	message string
	out     io.Writer
	start   time.Time
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	frames  []string
	mu      sync.Mutex
	width   int
}

// newSpinner creates a new spinner with the given message.
func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that will stop when the context is cancelled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		out:     os.Stderr,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	s.start = time.Now()
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				frame := s.frames[i%len(s.frames)]
				text := fmt.Sprintf("%s (%s)", s.message, time.Since(s.start).Round(time.Second))
				s.mu.Lock()
				s.width = max(s.width, len(text))
				fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(text))
				s.mu.Unlock()
				i++
			}
		}
	}()
}

// Stop stops the spinner and clears the line. It must follow Start.
func (s *Spinner) Stop() {
	s.cancel()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	<-s.stopped
	s.clearLine()
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width+4))
}

// StopWithSuccess stops the spinner and shows a success message.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled returns true if the spinner was stopped due to context cancellation.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

// loadSpinner is a StoreHooks that shows a spinner while the reference
// snapshot loads. Other events are forwarded to the wrapped hooks.
type loadSpinner struct {
	observability.StoreHooks
	ctx     context.Context
	out     io.Writer
	mu      sync.Mutex
	spinner *Spinner
}

func newLoadSpinner(ctx context.Context, next observability.StoreHooks) *loadSpinner {
	return &loadSpinner{StoreHooks: next, ctx: ctx, out: os.Stderr}
}

func (h *loadSpinner) OnLoadStart(ctx context.Context, id, role string) {
	h.StoreHooks.OnLoadStart(ctx, id, role)
	if role != observability.RoleReference {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.spinner != nil {
		h.spinner.Stop()
	}
	h.spinner = newSpinnerWithContext(h.ctx, "Loading reference "+id)
	h.spinner.out = h.out
	h.spinner.Start()
}

func (h *loadSpinner) OnLoadComplete(ctx context.Context, id, role string, vertices, edges int, d time.Duration, err error) {
	h.stop()
	h.StoreHooks.OnLoadComplete(ctx, id, role, vertices, edges, d, err)
}

func (h *loadSpinner) stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.spinner != nil {
		h.spinner.Stop()
		h.spinner = nil
	}
}
