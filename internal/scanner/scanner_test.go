package scanner

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ultron-engine/config"
	"ultron-engine/internal/events"
	"ultron-engine/internal/notification"
	"ultron-engine/internal/session"
)

// announceScanner wires just enough of a Scanner to exercise the
// session watcher: no market data client, no database, no redis.
func announceScanner(bus *events.EventBus) *Scanner {
	return NewScanner(nil, nil, nil, nil, nil,
		notification.NewManager(false), bus,
		config.ScannerConfig{}, config.MarketDataConfig{}, zerolog.Nop())
}

func collectSessionOpens(bus *events.EventBus) <-chan events.Event {
	got := make(chan events.Event, 8)
	bus.Subscribe(events.EventSessionOpened, func(e events.Event) { got <- e })
	return got
}

func drainOne(t *testing.T, ch <-chan events.Event) events.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a session-open event")
		return events.Event{}
	}
}

func assertQuiet(t *testing.T, ch <-chan events.Event) {
	t.Helper()
	select {
	case e := <-ch:
		t.Fatalf("unexpected extra announcement: %v", e.Data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCheckSessionsAnnouncesOncePerDay(t *testing.T) {
	bus := events.NewEventBus()
	got := collectSessionOpens(bus)
	sc := announceScanner(bus)

	// Wednesday 10:00 UTC: London open, New York not yet.
	wed := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	sc.checkSessions(wed)
	sc.checkSessions(wed.Add(5 * time.Minute))
	sc.checkSessions(wed.Add(time.Hour))

	e := drainOne(t, got)
	if e.Data["session"] != session.SessionLondon {
		t.Errorf("session = %v, want London", e.Data["session"])
	}
	assertQuiet(t, got)

	// A new UTC day resets the guard.
	sc.checkSessions(wed.Add(24 * time.Hour))
	drainOne(t, got)
	assertQuiet(t, got)
}

func TestCheckSessionsAnnouncesEachSession(t *testing.T) {
	bus := events.NewEventBus()
	got := collectSessionOpens(bus)
	sc := announceScanner(bus)

	// 13:00 UTC: London and New York overlap, one announcement each.
	sc.checkSessions(time.Date(2026, 3, 4, 13, 0, 0, 0, time.UTC))
	sc.checkSessions(time.Date(2026, 3, 4, 13, 5, 0, 0, time.UTC))

	seen := map[interface{}]bool{}
	seen[drainOne(t, got).Data["session"]] = true
	seen[drainOne(t, got).Data["session"]] = true
	if !seen[session.SessionLondon] || !seen[session.SessionNewYork] {
		t.Errorf("seen = %v, want both sessions", seen)
	}
	assertQuiet(t, got)
}

func TestCheckSessionsSilentWhenClosed(t *testing.T) {
	bus := events.NewEventBus()
	got := collectSessionOpens(bus)
	sc := announceScanner(bus)

	// Saturday: nothing to announce.
	sc.checkSessions(time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC))
	assertQuiet(t, got)
}
