package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"isitchristmas-screenshot/internal/geo"
	"isitchristmas-screenshot/internal/locale"
)

type sessionState int

const (
	stateIdle sessionState = iota
	stateConfigured
	stateLoading
	stateSettling
	stateReady
	stateCaptured
	stateFailed
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateConfigured:
		return "configured"
	case stateLoading:
		return "loading"
	case stateSettling:
		return "settling"
	case stateReady:
		return "ready"
	case stateCaptured:
		return "captured"
	case stateFailed:
		return "failed"
	case stateClosed:
		return "closed"
	}
	return "invalid"
}

// Session owns one browser context's full lifecycle for a single request:
// idle -> configured -> loading -> settling -> ready -> captured, with
// failed reachable from every working state and Close valid from any.
type Session struct {
	country geo.CountryCode
	profile locale.Profile
	engine  *Engine
	logger  *zap.Logger

	state   sessionState
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	unwatch func() bool
}

func (e *Engine) newSession(country geo.CountryCode, profile locale.Profile) *Session {
	return &Session{
		country: country,
		profile: profile,
		engine:  e,
		logger:  e.logger.With(zap.String("country", country.String())),
		state:   stateIdle,
	}
}

// Launch creates and configures the browser context: viewport, locale,
// timezone, language header, and document interception. No navigation yet.
// parent cancellation aborts the session mid-flight.
func (s *Session) Launch(parent context.Context) error {
	if err := s.require(stateIdle, "launch"); err != nil {
		return err
	}

	taskCtx, cancel := chromedp.NewContext(s.engine.allocator)
	s.parent = parent
	s.ctx, s.cancel = taskCtx, cancel
	s.unwatch = context.AfterFunc(parent, cancel)

	listenForDocuments(taskCtx, s.country, s.logger)

	err := s.engine.run(taskCtx,
		chromedp.EmulateViewport(int64(s.engine.cfg.ViewportWidth), int64(s.engine.cfg.ViewportHeight)),
		s.presentationAction(),
		enableInterception(),
	)
	if err != nil {
		s.state = stateFailed
		return &Error{Kind: FailureLaunch, Err: fmt.Errorf("configure browser context: %w", err)}
	}
	s.state = stateConfigured
	return nil
}

// Navigate loads the target page under the bounded navigation timeout.
func (s *Session) Navigate(targetURL string) error {
	if err := s.require(stateConfigured, "navigate"); err != nil {
		return err
	}
	s.state = stateLoading

	navCtx, cancel := context.WithTimeout(s.ctx, s.engine.cfg.NavigationTimeout)
	defer cancel()

	err := s.engine.run(navCtx,
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		s.state = stateFailed
		if errors.Is(err, context.DeadlineExceeded) && s.ctx.Err() == nil {
			return &Error{Kind: FailureNavigationTimeout, Err: fmt.Errorf("navigate %s: %w", targetURL, err)}
		}
		return &Error{Kind: FailureNavigation, Err: fmt.Errorf("navigate %s: %w", targetURL, err)}
	}
	s.state = stateSettling
	return nil
}

// Settle waits out the engine's settle strategy so client-side rendering
// can stabilize before capture.
func (s *Session) Settle() error {
	if err := s.require(stateSettling, "settle"); err != nil {
		return err
	}
	if err := s.engine.settle.Wait(s.ctx); err != nil {
		s.state = stateFailed
		// The chromedp context reports Canceled even when the trigger was
		// the request deadline, so consult the parent's cause as well.
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(context.Cause(s.parent), context.DeadlineExceeded) {
			return &Error{Kind: FailureNavigationTimeout, Err: err}
		}
		return &Error{Kind: FailureCapture, Err: err}
	}
	s.state = stateReady
	return nil
}

// Capture produces the PNG screenshot.
func (s *Session) Capture() ([]byte, error) {
	if err := s.require(stateReady, "capture"); err != nil {
		return nil, err
	}

	var buf []byte
	action := chromedp.Action(chromedp.CaptureScreenshot(&buf))
	if s.engine.cfg.FullPage {
		action = chromedp.FullScreenshot(&buf, 100)
	}
	if err := s.engine.run(s.ctx, action); err != nil {
		s.state = stateFailed
		return nil, &Error{Kind: FailureCapture, Err: fmt.Errorf("capture screenshot: %w", err)}
	}
	if len(buf) == 0 {
		s.state = stateFailed
		return nil, &Error{Kind: FailureCapture, Err: errors.New("empty screenshot")}
	}
	s.state = stateCaptured
	return buf, nil
}

// Close releases the browser context. Safe from any state, idempotent, and
// not contingent on a response having been delivered.
func (s *Session) Close() {
	if s.state == stateClosed {
		return
	}
	if s.unwatch != nil {
		s.unwatch()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.state = stateClosed
}

func (s *Session) require(want sessionState, op string) error {
	if s.state != want {
		return fmt.Errorf("cannot %s in state %s", op, s.state)
	}
	return nil
}

func (s *Session) presentationAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if err := emulation.SetTimezoneOverride(s.profile.Timezone).Do(ctx); err != nil {
			return fmt.Errorf("set timezone %s: %w", s.profile.Timezone, err)
		}
		if err := emulation.SetLocaleOverride().WithLocale(s.profile.Locale).Do(ctx); err != nil {
			return fmt.Errorf("set locale %s: %w", s.profile.Locale, err)
		}
		headers := network.Headers{"Accept-Language": s.profile.AcceptLanguage}
		if err := network.SetExtraHTTPHeaders(headers).Do(ctx); err != nil {
			return fmt.Errorf("set extra headers: %w", err)
		}
		if s.engine.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(s.engine.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}
