package scan

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// LineSource reads one code per line, as keyboard-wedge scanners and pasted input produce.
type LineSource struct {
	r io.Reader
}

// NewLineSource wraps r.
func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{r: r}
}

// Stream emits each non-blank line. A read error is delivered as a final event.
//
// Cancelling ctx does not interrupt a pending read: the goroutine stays
// blocked in the reader until it yields a line, EOF or an error, then exits
// without emitting. Close the reader (or reach EOF) to release it promptly.
func (s *LineSource) Stream(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(s.r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if !send(ctx, out, Event{Text: line}) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			send(ctx, out, Event{Err: err})
		}
	}()
	return out
}

func send(ctx context.Context, out chan<- Event, ev Event) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case out <- ev:
		return true
	}
}
