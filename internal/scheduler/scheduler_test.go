package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNew_Invalid(t *testing.T) {
	noop := func(context.Context) error { return nil }
	if _, err := New("not a schedule", nil, noop, quiet()); err == nil {
		t.Error("expected error for bad spec")
	}
	if _, err := New("@every 1h", nil, nil, quiet()); err == nil {
		t.Error("expected error for nil job")
	}
}

func TestRun_FiresAndStops(t *testing.T) {
	var runs atomic.Int32
	fired := make(chan struct{}, 1)
	job := func(context.Context) error {
		if runs.Add(1) == 1 {
			fired <- struct{}{}
		}
		return errors.New("failures are logged, not fatal")
	}

	s, err := New("@every 1s", nil, job, quiet())
	if err != nil {
		t.Fatal(err)
	}
	if !s.Next().IsZero() {
		t.Error("expected no next run before Run")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("job never ran")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
