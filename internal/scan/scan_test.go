package scan

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcommunity/portal/internal/pass"
)

// chanSource replays fixed reads and records whether it was told to stop.
type chanSource struct {
	reads     []Event
	delivered atomic.Int32
	stopped   chan struct{}
}

func newChanSource(reads ...Event) *chanSource {
	return &chanSource{reads: reads, stopped: make(chan struct{})}
}

func (s *chanSource) Stream(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		defer close(s.stopped)
		for _, ev := range s.reads {
			select {
			case <-ctx.Done():
				return
			case out <- ev:
				s.delivered.Add(1)
			}
		}
		<-ctx.Done()
	}()
	return out
}

func prefixFilter(text string) error {
	return pass.CheckPrefix(text)
}

func TestForwardFirst_StopsAfterFirstForward(t *testing.T) {
	src := newChanSource(
		Event{Text: "https://example.com"},
		Event{Err: errors.New("blurry frame")},
		Event{Text: "VISITOR-1-abc"},
		Event{Text: "VISITOR-1-abc"},
		Event{Text: "VISITOR-2-def"},
	)

	var forwarded []string
	var rejected []string
	err := ForwardFirst(context.Background(), src, prefixFilter,
		func(_ context.Context, text string) error {
			forwarded = append(forwarded, text)
			return nil
		},
		func(text string, err error) { rejected = append(rejected, text) },
	)
	require.NoError(t, err)

	select {
	case <-src.stopped:
	case <-time.After(time.Second):
		t.Fatal("stream was not cancelled")
	}
	assert.Equal(t, []string{"VISITOR-1-abc"}, forwarded)
	assert.Equal(t, []string{"https://example.com", ""}, rejected)
	assert.EqualValues(t, 3, src.delivered.Load())
}

func TestForwardFirst_ReturnsForwardError(t *testing.T) {
	src := newChanSource(Event{Text: "VISITOR-1-abc"})
	boom := errors.New("verification failed")

	err := ForwardFirst(context.Background(), src, prefixFilter,
		func(context.Context, string) error { return boom }, nil)
	assert.ErrorIs(t, err, boom)
}

func TestFirstValid_CancelledByCaller(t *testing.T) {
	src := newChanSource(Event{Text: "garbage"})
	ctx, cancel := context.WithCancel(context.Background())

	rejected := make(chan struct{})
	go func() {
		<-rejected
		cancel()
	}()

	_, err := FirstValid(ctx, src, prefixFilter, func(string, error) { close(rejected) })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLineSource(t *testing.T) {
	input := "\n  not-a-pass \nVISITOR-42-abcdef\nVISITOR-43-later\n"

	var rejected []string
	text, err := FirstValid(context.Background(), NewLineSource(strings.NewReader(input)), prefixFilter,
		func(text string, _ error) { rejected = append(rejected, text) })
	require.NoError(t, err)
	assert.Equal(t, "VISITOR-42-abcdef", text)
	assert.Equal(t, []string{"not-a-pass"}, rejected)
}

func TestLineSource_CancelWaitsForPendingRead(t *testing.T) {
	pr, pw := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	events := NewLineSource(pr).Stream(ctx)
	cancel()

	select {
	case ev, ok := <-events:
		t.Fatalf("stream changed while the read was pending: %+v open=%v", ev, ok)
	case <-time.After(50 * time.Millisecond):
	}

	_, err := pw.Write([]byte("VISITOR-1-late\n"))
	require.NoError(t, err)

	select {
	case ev, ok := <-events:
		assert.False(t, ok, "read after cancel was delivered: %+v", ev)
	case <-time.After(time.Second):
		t.Fatal("stream did not stop once the read returned")
	}
	require.NoError(t, pw.Close())
}

func TestLineSource_EndsWithoutCode(t *testing.T) {
	_, err := FirstValid(context.Background(), NewLineSource(strings.NewReader("foo\nbar\n")), prefixFilter, nil)
	assert.ErrorIs(t, err, ErrNoCode)
}

func TestImageSource_DecodesRenderedPass(t *testing.T) {
	dir := t.TempDir()
	code, err := pass.NewCode(time.Now())
	require.NoError(t, err)

	png, err := pass.Render(code, 256)
	require.NoError(t, err)
	good := filepath.Join(dir, "pass.png")
	require.NoError(t, os.WriteFile(good, png, 0o600))

	bad := filepath.Join(dir, "noise.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o600))

	var rejects int
	text, err := FirstValid(context.Background(), NewImageSource(bad, good), prefixFilter,
		func(string, error) { rejects++ })
	require.NoError(t, err)
	assert.Equal(t, code, text)
	assert.Equal(t, 1, rejects)

	direct, err := DecodeFile(good)
	require.NoError(t, err)
	assert.Equal(t, code, direct)
}
