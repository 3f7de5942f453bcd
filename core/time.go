// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"time"
)

// NewTime creates a new time service
func NewTime(cfg TimeConfiguration) *Time {
	return &Time{
		eventTicker: time.NewTicker(PollInterval(cfg)),
	}
}

// PollInterval is the delay between event polls, at least a millisecond.
func PollInterval(cfg TimeConfiguration) time.Duration {
	if cfg.EventPollDelay <= 0 {
		return time.Millisecond
	}
	return time.Duration(cfg.EventPollDelay) * time.Millisecond
}

// Time contains the time services and tickers
type Time struct {
	eventTicker *time.Ticker
}

// EventTicker gets the initialized event ticker for the event loop
func (t *Time) EventTicker() *time.Ticker {
	return t.eventTicker
}

// Stop stops all tickers
func (t *Time) Stop() {
	t.eventTicker.Stop()
}
