// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"strings"
)

// Cause says why startup could not continue.
type Cause int

// Startup failure causes
const (
	CauseNoAdapters Cause = iota
	CauseNoSuitableAdapter
	CauseIncompleteQueues
	CauseMissingExtension
	CauseEmptySurfaceSupport
	CauseBackend
)

func (c Cause) String() string {
	switch c {
	case CauseNoAdapters:
		return "no adapters present"
	case CauseNoSuitableAdapter:
		return "no suitable adapter"
	case CauseIncompleteQueues:
		return "no graphics and present queue families"
	case CauseMissingExtension:
		return "required extension missing"
	case CauseEmptySurfaceSupport:
		return "no surface formats or present modes"
	case CauseBackend:
		return "backend query failed"
	}
	return "unknown"
}

// Rejection records why one adapter failed the suitability filter.
type Rejection struct {
	Adapter string
	Cause   Cause

	// Missing lists absent extensions for CauseMissingExtension
	Missing []string
}

func (r Rejection) String() string {
	if len(r.Missing) > 0 {
		return fmt.Sprintf("%s: %s (%s)", r.Adapter, r.Cause, strings.Join(r.Missing, ", "))
	}
	return fmt.Sprintf("%s: %s", r.Adapter, r.Cause)
}

// StartupError is the only error Negotiate returns.
// None of them are recoverable.
type StartupError struct {
	Cause      Cause
	Rejections []Rejection
	Err        error
}

func (e *StartupError) Error() string {
	msg := "startup failed: " + e.Cause.String()
	if len(e.Rejections) > 0 {
		reasons := make([]string, len(e.Rejections))
		for i, r := range e.Rejections {
			reasons[i] = r.String()
		}
		msg += " [" + strings.Join(reasons, "; ") + "]"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the backend error, if any.
func (e *StartupError) Unwrap() error {
	return e.Err
}

func backendError(adapter Adapter, call string, err error) error {
	name := "backend"
	if adapter != nil {
		name = adapter.Name()
	}
	return &StartupError{
		Cause: CauseBackend,
		Err:   fmt.Errorf("%s.%s(): %w", name, call, err),
	}
}
