package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeService struct {
	name     string
	startErr error
	block    bool
	stopped  atomic.Int32
	release  chan struct{}
}

func newFakeService(name string, block bool, startErr error) *fakeService {
	return &fakeService{name: name, block: block, startErr: startErr, release: make(chan struct{})}
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if !s.block {
		return s.startErr
	}
	select {
	case <-ctx.Done():
	case <-s.release:
	}
	return s.startErr
}

func (s *fakeService) Stop(context.Context) error {
	if s.stopped.Add(1) == 1 {
		close(s.release)
	}
	return nil
}

func TestRunnerStopsAllOnCancel(t *testing.T) {
	a := newFakeService("http", true, nil)
	b := newFakeService("worker", true, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- NewRunner(a, b).Run(ctx, time.Second, nil)
	}()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("canceled run should return nil, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("runner did not stop after cancel")
	}
	if a.stopped.Load() != 1 || b.stopped.Load() != 1 {
		t.Fatalf("every service must be stopped once: a=%d b=%d", a.stopped.Load(), b.stopped.Load())
	}
}

func TestRunnerPropagatesServiceFailure(t *testing.T) {
	boom := errors.New("listen failed")
	failing := newFakeService("http", false, boom)
	other := newFakeService("worker", true, nil)

	err := NewRunner(failing, other).Run(context.Background(), time.Second, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected start error, got %v", err)
	}
	if other.stopped.Load() != 1 {
		t.Fatalf("surviving service must be stopped")
	}
}

func TestRunnerEarlyExitStopsOthers(t *testing.T) {
	quitter := newFakeService("oneshot", false, nil)
	other := newFakeService("worker", true, nil)

	if err := NewRunner(quitter, other).Run(context.Background(), time.Second, nil); err != nil {
		t.Fatalf("clean early exit should return nil, got %v", err)
	}
	if other.stopped.Load() != 1 {
		t.Fatalf("remaining service must be stopped after early exit")
	}
}

func TestRunnerRejectsEmpty(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("empty runner should fail")
	}
	if err := RunWithOptions(nil, Options{}); err == nil {
		t.Fatalf("nil runner should fail")
	}
}
