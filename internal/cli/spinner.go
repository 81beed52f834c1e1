package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// spinnerFrames is the braille animation drawn in front of the stage message.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner shows the current render stage on a single terminal line.
// The stage message can change while it runs; the line is cleared on stop.
type spinner struct {
	w      io.Writer
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	stage string
	frame int
	width int // widest line drawn so far, cleared on stop

	once    sync.Once
	started bool
	stopped chan struct{}
}

// newSpinner returns a spinner writing to w that stops when ctx is done.
func newSpinner(ctx context.Context, w io.Writer, stage string) *spinner {
	inner, cancel := context.WithCancel(ctx)
	return &spinner{
		w:       w,
		parent:  ctx,
		ctx:     inner,
		cancel:  cancel,
		stage:   stage,
		stopped: make(chan struct{}),
	}
}

// Start animates until Stop is called or the context ends.
func (s *spinner) Start() {
	s.started = true
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.draw()
			}
		}
	}()
}

// SetStage replaces the message shown next to the animation.
func (s *spinner) SetStage(stage string) {
	s.mu.Lock()
	s.stage = stage
	s.mu.Unlock()
}

func (s *spinner) draw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame := spinnerFrames[s.frame%len(spinnerFrames)]
	s.frame++
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.stage))
	if n := len(s.stage) + 2; n > s.width {
		s.width = n
	}
}

// Stop ends the animation and clears the line. It is safe to call more than once.
func (s *spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		if s.started {
			<-s.stopped
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.width > 0 {
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		}
	})
}

// Fail stops the spinner and leaves msg on the line.
func (s *spinner) Fail(msg string) {
	s.Stop()
	fmt.Fprintln(s.w, styleIconError.Render(iconError)+" "+msg)
}

// Cancelled reports whether the render was interrupted rather than stopped.
func (s *spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
