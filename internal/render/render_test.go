package render

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/chromedp/chromedp"

	"isitchristmas-screenshot/internal/locale"
)

// stubRun succeeds for the context-configuration run and then blocks every
// later run until its context expires, mimicking a page that never loads.
func stubRun() func(context.Context, ...chromedp.Action) error {
	calls := 0
	return func(ctx context.Context, _ ...chromedp.Action) error {
		calls++
		if calls == 1 {
			return nil
		}
		<-ctx.Done()
		return ctx.Err()
	}
}

func TestNewEngineValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(Config{}, nil); err == nil {
		t.Fatal("expected error for missing target URL")
	}
	if _, err := NewEngine(Config{TargetURL: "https://isitchristmas.com", MaxParallel: -1}, nil); err == nil {
		t.Fatal("expected error for negative max parallel")
	}

	engine, err := NewEngine(Config{TargetURL: "https://isitchristmas.com", MaxParallel: 2}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer engine.Close()

	if cap(engine.limiter) != 2 {
		t.Fatalf("expected limiter capacity 2, got %d", cap(engine.limiter))
	}
	if engine.cfg.ViewportWidth != 1920 || engine.cfg.ViewportHeight != 1080 {
		t.Fatalf("expected default viewport, got %dx%d", engine.cfg.ViewportWidth, engine.cfg.ViewportHeight)
	}
	if engine.cfg.NavigationTimeout != 25*time.Second {
		t.Fatalf("expected default nav timeout, got %v", engine.cfg.NavigationTimeout)
	}
	if _, ok := engine.settle.(FixedDelay); !ok {
		t.Fatalf("expected fixed-delay settle strategy, got %T", engine.settle)
	}
}

type countingSettle struct {
	calls int
}

func (s *countingSettle) Wait(context.Context) error {
	s.calls++
	return nil
}

func TestNewEngineCustomSettleStrategy(t *testing.T) {
	t.Parallel()

	settle := &countingSettle{}
	engine, err := NewEngine(Config{TargetURL: "https://isitchristmas.com", Settle: settle}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer engine.Close()

	if engine.settle != settle {
		t.Fatalf("expected injected settle strategy, got %T", engine.settle)
	}
}

func TestAcquireHonorsContext(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(Config{TargetURL: "https://isitchristmas.com", MaxParallel: 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer engine.Close()

	if err := engine.acquire(context.Background()); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := engine.acquire(ctx); err == nil {
		t.Fatal("expected acquire to fail once the slot is taken and ctx is done")
	}

	engine.release()
	if err := engine.acquire(context.Background()); err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
}

func TestSessionStateGuards(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(Config{TargetURL: "https://isitchristmas.com"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer engine.Close()

	session := engine.newSession("SE", locale.Fallback)
	if err := session.Navigate("https://isitchristmas.com"); err == nil {
		t.Fatal("expected navigate to fail before launch")
	}
	if err := session.Settle(); err == nil {
		t.Fatal("expected settle to fail before launch")
	}
	if _, err := session.Capture(); err == nil {
		t.Fatal("expected capture to fail before launch")
	}

	// Close is valid from any state and idempotent.
	session.Close()
	session.Close()
	if session.state != stateClosed {
		t.Fatalf("expected closed state, got %s", session.state)
	}
}

func TestNavigateTimeoutFailsSessionAndCloseReleasesIt(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(Config{
		TargetURL:         "https://isitchristmas.com",
		NavigationTimeout: 20 * time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer engine.Close()
	engine.run = stubRun()

	session := engine.newSession("JP", locale.Fallback)
	if err := session.Launch(context.Background()); err != nil {
		t.Fatalf("launch failed: %v", err)
	}

	err = session.Navigate(engine.cfg.TargetURL)
	if err == nil {
		t.Fatal("expected navigation to time out")
	}
	if KindOf(err) != FailureNavigationTimeout {
		t.Fatalf("expected navigation_timeout kind, got %q", KindOf(err))
	}
	if session.state != stateFailed {
		t.Fatalf("expected failed state after timeout, got %s", session.state)
	}

	session.Close()
	if session.state != stateClosed {
		t.Fatalf("expected closed state, got %s", session.state)
	}
}

func TestRenderReleasesSlotAfterFailure(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(Config{
		TargetURL:         "https://isitchristmas.com",
		NavigationTimeout: 20 * time.Millisecond,
		MaxParallel:       1,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer engine.Close()
	engine.run = stubRun()

	_, err = engine.Render(context.Background(), "JP", locale.Fallback)
	if KindOf(err) != FailureNavigationTimeout {
		t.Fatalf("expected navigation_timeout kind, got %v", err)
	}

	select {
	case engine.limiter <- struct{}{}:
	default:
		t.Fatal("render slot was not released after the failed render")
	}
}

func TestSettleRequestDeadlineClassifiedAsTimeout(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(Config{
		TargetURL: "https://isitchristmas.com",
		Settle:    FixedDelay{Delay: time.Minute},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer engine.Close()
	engine.run = func(context.Context, ...chromedp.Action) error { return nil }

	parent, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	session := engine.newSession("JP", locale.Fallback)
	defer session.Close()
	if err := session.Launch(parent); err != nil {
		t.Fatalf("launch failed: %v", err)
	}
	if err := session.Navigate(engine.cfg.TargetURL); err != nil {
		t.Fatalf("navigate failed: %v", err)
	}

	err = session.Settle()
	if err == nil {
		t.Fatal("expected settle to be interrupted by the request deadline")
	}
	if KindOf(err) != FailureNavigationTimeout {
		t.Fatalf("expected navigation_timeout kind for deadline expiry, got %q", KindOf(err))
	}
	if session.state != stateFailed {
		t.Fatalf("expected failed state, got %s", session.state)
	}
}

func TestSessionStateStrings(t *testing.T) {
	t.Parallel()

	want := map[sessionState]string{
		stateIdle:       "idle",
		stateConfigured: "configured",
		stateLoading:    "loading",
		stateSettling:   "settling",
		stateReady:      "ready",
		stateCaptured:   "captured",
		stateFailed:     "failed",
		stateClosed:     "closed",
	}
	for state, name := range want {
		if got := state.String(); got != name {
			t.Fatalf("state %d = %q, want %q", state, got, name)
		}
	}
}

func TestFixedDelayWait(t *testing.T) {
	t.Parallel()

	if err := (FixedDelay{}).Wait(context.Background()); err != nil {
		t.Fatalf("zero delay should not fail: %v", err)
	}

	start := time.Now()
	if err := (FixedDelay{Delay: 20 * time.Millisecond}).Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("wait returned after %v, expected at least 20ms", elapsed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (FixedDelay{Delay: time.Hour}).Wait(ctx); err == nil {
		t.Fatal("expected error when context is canceled")
	}
}

func TestErrorKindClassification(t *testing.T) {
	t.Parallel()

	navErr := &Error{Kind: FailureNavigationTimeout, Err: context.DeadlineExceeded}
	if KindOf(navErr) != FailureNavigationTimeout {
		t.Fatalf("unexpected kind %q", KindOf(navErr))
	}
	wrapped := fmt.Errorf("render failed: %w", navErr)
	if KindOf(wrapped) != FailureNavigationTimeout {
		t.Fatalf("expected kind through wrapping, got %q", KindOf(wrapped))
	}
	if !errors.Is(wrapped, context.DeadlineExceeded) {
		t.Fatal("expected cause to unwrap")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Fatal("expected empty kind for untagged error")
	}
}

func TestNoopRendererFailsWithLaunchKind(t *testing.T) {
	t.Parallel()

	_, err := NewNoop().Render(context.Background(), "SE", locale.Fallback)
	if err == nil {
		t.Fatal("expected error from noop renderer")
	}
	if KindOf(err) != FailureLaunch {
		t.Fatalf("expected launch kind, got %q", KindOf(err))
	}
}
