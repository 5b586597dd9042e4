// Package scan turns code readers into a cancellable stream of decoded text
// and forwards at most one code per scanning session.
package scan

import (
	"context"
	"errors"
)

// ErrNoCode means the stream ended without a code that passed the filter.
var ErrNoCode = errors.New("scan: no valid code read")

// Event is one read: decoded text, or the reason a frame could not be decoded.
type Event struct {
	Text string
	Err  error
}

// Source produces read events until ctx is cancelled or input runs out.
// The channel is closed when the source stops. No event is delivered after
// cancellation, but a source blocked in a read only stops once that read
// returns.
type Source interface {
	Stream(ctx context.Context) <-chan Event
}

// RejectFunc observes reads that were skipped.
type RejectFunc func(text string, err error)

// FirstValid consumes src until a read passes filter and returns its text.
// The stream is cancelled before FirstValid returns, so no read after the
// first accepted one is ever delivered.
func FirstValid(ctx context.Context, src Source, filter func(string) error, onReject RejectFunc) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := src.Stream(ctx)
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case ev, ok := <-events:
			if !ok {
				if err := ctx.Err(); err != nil {
					return "", err
				}
				return "", ErrNoCode
			}
			if ev.Err != nil {
				reject(onReject, ev.Text, ev.Err)
				continue
			}
			if filter != nil {
				if err := filter(ev.Text); err != nil {
					reject(onReject, ev.Text, err)
					continue
				}
			}
			cancel()
			return ev.Text, nil
		}
	}
}

// ForwardFirst stops the stream at the first accepted read and hands it to
// forward exactly once. forward's error is returned as is.
func ForwardFirst(ctx context.Context, src Source, filter func(string) error, forward func(context.Context, string) error, onReject RejectFunc) error {
	text, err := FirstValid(ctx, src, filter, onReject)
	if err != nil {
		return err
	}
	return forward(ctx, text)
}

func reject(fn RejectFunc, text string, err error) {
	if fn != nil {
		fn(text, err)
	}
}
