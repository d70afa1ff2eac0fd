// Package session maps wall-clock time to tradeable market sessions.
// The gate is a pure function of (instrument class, UTC time); no
// network calls, no cached state.
package session

import (
	"time"

	"ultron-engine/internal/market"
)

// Status is the gate's answer for one instant.
type Status struct {
	Open    bool   `json:"open"`
	Session string `json:"session,omitempty"`
}

// Session window names.
const (
	SessionAlways  = "24/7"
	SessionLondon  = "London"
	SessionNewYork = "New York"
)

// UTC windows for the supervised sessions. London and New York overlap
// 12:00-16:00; the earlier session wins the name during the overlap.
type window struct {
	name       string
	start, end int // minutes from midnight UTC, [start, end)
}

var sessionWindows = []window{
	{SessionLondon, 7 * 60, 16 * 60},
	{SessionNewYork, 12 * 60, 21 * 60},
}

// IsMarketOpen reports whether the relevant session is open at nowUTC.
// Crypto trades around the clock. Forex, stocks and indexes follow the
// London/New York windows Monday through Friday.
func IsMarketOpen(class market.InstrumentClass, nowUTC time.Time) Status {
	if class == market.ClassCrypto {
		return Status{Open: true, Session: SessionAlways}
	}

	now := nowUTC.UTC()
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return Status{}
	}

	minutes := now.Hour()*60 + now.Minute()
	for _, w := range sessionWindows {
		if minutes >= w.start && minutes < w.end {
			return Status{Open: true, Session: w.name}
		}
	}
	return Status{}
}

// IsSessionOpen reports whether the named session window is open at
// nowUTC. Unknown names are never open.
func IsSessionOpen(name string, nowUTC time.Time) bool {
	if name == SessionAlways {
		return true
	}

	now := nowUTC.UTC()
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	minutes := now.Hour()*60 + now.Minute()
	for _, w := range sessionWindows {
		if w.name == name && minutes >= w.start && minutes < w.end {
			return true
		}
	}
	return false
}

// NextOpen returns the next instant the gate opens for the class, used
// by the scanner to report how long it will idle. For crypto it returns
// nowUTC unchanged.
func NextOpen(class market.InstrumentClass, nowUTC time.Time) time.Time {
	if class == market.ClassCrypto {
		return nowUTC
	}
	t := nowUTC.UTC()
	for i := 0; i < 8*24*60; i++ { // bounded walk, a week is enough
		if IsMarketOpen(class, t).Open {
			return t
		}
		t = t.Add(time.Minute)
	}
	return t
}
