package render

import (
	"context"
	"errors"

	"isitchristmas-screenshot/internal/geo"
	"isitchristmas-screenshot/internal/locale"
)

// Noop stands in for the engine when headless Chrome is not available in
// the current build or environment. Every render fails with a launch error.
type Noop struct{}

// NewNoop creates a new Noop renderer.
func NewNoop() *Noop {
	return &Noop{}
}

// Render always reports the renderer as unavailable.
func (Noop) Render(_ context.Context, _ geo.CountryCode, _ locale.Profile) ([]byte, error) {
	return nil, &Error{Kind: FailureLaunch, Err: errors.New("headless renderer not configured")}
}
