package render

import (
	"errors"
	"fmt"
)

// FailureKind classifies where in the pipeline a render failed.
type FailureKind string

const (
	// FailureLaunch covers browser context creation and configuration.
	FailureLaunch FailureKind = "launch"
	// FailureNavigation covers network errors reaching the target page.
	FailureNavigation FailureKind = "navigation"
	// FailureNavigationTimeout is a deadline expiring while loading or
	// settling the page.
	FailureNavigationTimeout FailureKind = "navigation_timeout"
	// FailureCapture covers non-timeout settle interruption and screenshot
	// failures.
	FailureCapture FailureKind = "capture"
)

// Error is a render failure tagged with the pipeline stage that produced it.
type Error struct {
	Kind FailureKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("render %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from err, or "" for untagged errors.
func KindOf(err error) FailureKind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}
