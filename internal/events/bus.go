package events

import (
	"sync"
	"time"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventDecision            EventType = "DECISION"
	EventScanStarted         EventType = "SCAN_STARTED"
	EventScanCompleted       EventType = "SCAN_COMPLETED"
	EventSessionOpened       EventType = "SESSION_OPENED"
	EventStrategyModeChanged EventType = "STRATEGY_MODE_CHANGED"
	EventWatchlistChanged    EventType = "WATCHLIST_CHANGED"
	EventKeepAlive           EventType = "KEEP_ALIVE"
	EventError               EventType = "ERROR"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Subscriber is a function that handles events
type Subscriber func(Event)

// EventBus manages event publishing and subscriptions
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	allSubs     []Subscriber // Subscribers to all events
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]Subscriber),
		allSubs:     make([]Subscriber, 0),
	}
}

// Subscribe registers a subscriber for a specific event type
func (eb *EventBus) Subscribe(eventType EventType, subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
}

// SubscribeAll registers a subscriber for all events
func (eb *EventBus) SubscribeAll(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.allSubs = append(eb.allSubs, subscriber)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if subs, ok := eb.subscribers[event.Type]; ok {
		for _, sub := range subs {
			go sub(event) // Run in goroutine to avoid blocking
		}
	}

	for _, sub := range eb.allSubs {
		go sub(event)
	}
}

// PublishDecision publishes the outcome of one symbol evaluation
func (eb *EventBus) PublishDecision(symbol, action, strategyName string, rewardRisk float64) {
	eb.Publish(Event{
		Type: EventDecision,
		Data: map[string]interface{}{
			"symbol":      symbol,
			"action":      action,
			"strategy":    strategyName,
			"reward_risk": rewardRisk,
		},
	})
}

// PublishScanStarted publishes the start of a watchlist scan
func (eb *EventBus) PublishScanStarted(scanID string, symbols int) {
	eb.Publish(Event{
		Type: EventScanStarted,
		Data: map[string]interface{}{
			"scan_id": scanID,
			"symbols": symbols,
		},
	})
}

// PublishScanCompleted publishes the completion of a watchlist scan
func (eb *EventBus) PublishScanCompleted(scanID string, evaluated, operate int, elapsed time.Duration) {
	eb.Publish(Event{
		Type: EventScanCompleted,
		Data: map[string]interface{}{
			"scan_id":    scanID,
			"evaluated":  evaluated,
			"operate":    operate,
			"elapsed_ms": elapsed.Milliseconds(),
		},
	})
}

// PublishSessionOpened publishes a trading session opening
func (eb *EventBus) PublishSessionOpened(sessionName string) {
	eb.Publish(Event{
		Type: EventSessionOpened,
		Data: map[string]interface{}{
			"session": sessionName,
		},
	})
}

// PublishStrategyModeChanged publishes a strategy mode switch
func (eb *EventBus) PublishStrategyModeChanged(strategyName, mode string) {
	eb.Publish(Event{
		Type: EventStrategyModeChanged,
		Data: map[string]interface{}{
			"strategy": strategyName,
			"mode":     mode,
		},
	})
}

// PublishWatchlistChanged publishes a watchlist mutation
func (eb *EventBus) PublishWatchlistChanged(symbol, change string) {
	eb.Publish(Event{
		Type: EventWatchlistChanged,
		Data: map[string]interface{}{
			"symbol": symbol,
			"change": change,
		},
	})
}

// PublishError publishes an error event
func (eb *EventBus) PublishError(source, message string, err error) {
	data := map[string]interface{}{
		"source":  source,
		"message": message,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	eb.Publish(Event{
		Type: EventError,
		Data: data,
	})
}
