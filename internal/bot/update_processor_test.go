package bot

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestTrySendErrDoesNotBlockAfterCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// unbuffered channel with nobody reading, the pre-fix shutdown shape
	chErr := make(chan error)
	done := make(chan struct{})
	go func() {
		trySendErr(ctx, chErr, ctx.Err())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("error send blocked after cancellation")
	}
}

func TestTrySendErrDeliversToActiveConsumer(t *testing.T) {
	t.Parallel()

	chErr := make(chan error, 1)
	want := errors.New("poll failed")
	trySendErr(context.Background(), chErr, want)

	select {
	case got := <-chErr:
		if !errors.Is(got, want) {
			t.Fatalf("unexpected error delivered: %v", got)
		}
	default:
		t.Fatalf("error not delivered to a ready consumer")
	}
}
