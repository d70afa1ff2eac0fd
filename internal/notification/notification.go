package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	NotifySignal       NotificationType = "signal"
	NotifyHeartbeat    NotificationType = "heartbeat"
	NotifySessionOpen  NotificationType = "session_open"
	NotifyError        NotificationType = "error"
	NotifyInfo         NotificationType = "info"
)

// Notification represents a notification message
type Notification struct {
	Type      NotificationType
	Title     string
	Message   string
	Symbol    string
	Price     float64
	Timestamp time.Time
	Extra     map[string]interface{}
}

// Notifier interface for different notification providers
type Notifier interface {
	Send(notification *Notification) error
	Name() string
	IsEnabled() bool
}

// Manager manages multiple notification providers
type Manager struct {
	notifiers []Notifier
	enabled   bool
}

// NewManager creates a new notification manager
func NewManager(enabled bool) *Manager {
	return &Manager{
		notifiers: make([]Notifier, 0),
		enabled:   enabled,
	}
}

// AddNotifier adds a notification provider
func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// Send sends a notification to all enabled providers
func (m *Manager) Send(notification *Notification) error {
	if !m.enabled {
		return nil
	}

	var lastErr error
	for _, n := range m.notifiers {
		if n.IsEnabled() {
			if err := n.Send(notification); err != nil {
				lastErr = err
			}
		}
	}
	return lastErr
}

// Signal carries everything the signal message needs. TP2/TP3 are
// optional; zero means the strategy emitted a single target.
type Signal struct {
	Symbol     string
	Strategy   string
	Direction  string
	EntryKind  string
	Entry      float64
	Stop       float64
	TakeProfit float64
	TP2        float64
	TP3        float64
	RewardRisk float64
	RiskTier   string
	Session    string
}

// SendSignal sends an OPERATE decision to all providers
func (m *Manager) SendSignal(s Signal) error {
	emoji := "\U0001F7E2" // green circle
	if strings.EqualFold(s.Direction, "short") {
		emoji = "\U0001F534" // red circle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s @ %.4f\n", strings.ToUpper(s.Direction), s.Symbol, s.Entry)
	fmt.Fprintf(&b, "Setup: %s (%s)\n", s.EntryKind, s.Strategy)
	fmt.Fprintf(&b, "SL: %.4f | TP1: %.4f", s.Stop, s.TakeProfit)
	if s.TP2 != 0 {
		fmt.Fprintf(&b, " | TP2: %.4f", s.TP2)
	}
	if s.TP3 != 0 {
		fmt.Fprintf(&b, " | TP3: %.4f", s.TP3)
	}
	fmt.Fprintf(&b, "\nR:R %.2f | Risk: %s | Session: %s", s.RewardRisk, s.RiskTier, s.Session)

	return m.Send(&Notification{
		Type:      NotifySignal,
		Title:     fmt.Sprintf("%s Signal: %s", emoji, s.Symbol),
		Message:   b.String(),
		Symbol:    s.Symbol,
		Price:     s.Entry,
		Timestamp: time.Now(),
		Extra: map[string]interface{}{
			"strategy":    s.Strategy,
			"direction":   s.Direction,
			"stop_loss":   s.Stop,
			"take_profit": s.TakeProfit,
			"reward_risk": s.RewardRisk,
		},
	})
}

// SendHeartbeat sends the periodic keep-alive message
func (m *Manager) SendHeartbeat(symbol string, lastClose float64) error {
	return m.Send(&Notification{
		Type:      NotifyHeartbeat,
		Title:     "\U0001F493 Heartbeat",
		Message:   fmt.Sprintf("Scanner alive. %s last close %.4f", symbol, lastClose),
		Symbol:    symbol,
		Price:     lastClose,
		Timestamp: time.Now(),
	})
}

// SendSessionOpen announces a trading session opening
func (m *Manager) SendSessionOpen(sessionName string) error {
	return m.Send(&Notification{
		Type:      NotifySessionOpen,
		Title:     fmt.Sprintf("\U0001F514 %s session open", sessionName),
		Message:   fmt.Sprintf("The %s session is now open. Watchlist scanning active.", sessionName),
		Timestamp: time.Now(),
	})
}

// SendError sends an error notification
func (m *Manager) SendError(title, message string) error {
	return m.Send(&Notification{
		Type:      NotifyError,
		Title:     fmt.Sprintf("⚠️ %s", title),
		Message:   message,
		Timestamp: time.Now(),
	})
}

// =============================================================================
// TELEGRAM NOTIFIER
// =============================================================================

// TelegramNotifier sends notifications via Telegram
type TelegramNotifier struct {
	botToken string
	chatID   string
	enabled  bool
	client   *http.Client
}

// TelegramConfig holds Telegram configuration
type TelegramConfig struct {
	BotToken string
	ChatID   string
	Enabled  bool
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(config TelegramConfig) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: config.BotToken,
		chatID:   config.ChatID,
		enabled:  config.Enabled && config.BotToken != "" && config.ChatID != "",
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TelegramNotifier) Name() string {
	return "telegram"
}

func (t *TelegramNotifier) IsEnabled() bool {
	return t.enabled
}

func (t *TelegramNotifier) Send(notification *Notification) error {
	if !t.enabled {
		return nil
	}

	message := fmt.Sprintf("*%s*\n\n%s", notification.Title, notification.Message)

	payload := map[string]interface{}{
		"chat_id":    t.chatID,
		"text":       message,
		"parse_mode": "Markdown",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.botToken)
	resp, err := t.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}

// =============================================================================
// DISCORD NOTIFIER
// =============================================================================

// DiscordNotifier sends notifications via Discord webhook
type DiscordNotifier struct {
	webhookURL string
	enabled    bool
	client     *http.Client
}

// DiscordConfig holds Discord configuration
type DiscordConfig struct {
	WebhookURL string
	Enabled    bool
}

// NewDiscordNotifier creates a new Discord notifier
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: config.WebhookURL,
		enabled:    config.Enabled && config.WebhookURL != "",
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *DiscordNotifier) Name() string {
	return "discord"
}

func (d *DiscordNotifier) IsEnabled() bool {
	return d.enabled
}

func (d *DiscordNotifier) Send(notification *Notification) error {
	if !d.enabled {
		return nil
	}

	color := 0x00FF00 // Green
	if notification.Type == NotifyError {
		color = 0xFF0000 // Red
	}

	embed := map[string]interface{}{
		"title":       notification.Title,
		"description": notification.Message,
		"color":       color,
		"timestamp":   notification.Timestamp.Format(time.RFC3339),
	}

	if notification.Symbol != "" {
		fields := []map[string]interface{}{
			{"name": "Symbol", "value": notification.Symbol, "inline": true},
		}
		if notification.Price > 0 {
			fields = append(fields, map[string]interface{}{
				"name": "Price", "value": fmt.Sprintf("%.4f", notification.Price), "inline": true,
			})
		}
		embed["fields"] = fields
	}

	payload := map[string]interface{}{
		"embeds": []map[string]interface{}{embed},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal discord payload: %w", err)
	}

	resp, err := d.client.Post(d.webhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send discord message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook returned status %d", resp.StatusCode)
	}

	return nil
}
