// Package telegram delivers alert events to a Telegram chat via the Bot API.
// It is the notification collaborator: formatting and delivery live here, the
// core only hands over alerts.
package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"cryptodesk/internal/domain"
)

type Notifier struct {
	botToken   string
	chatID     string
	enabled    bool
	location   *time.Location
	httpClient *http.Client
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// NewNotifier creates a Telegram notifier. With an empty token or chat id the
// notifier stays disabled and every Send is a silent no-op.
func NewNotifier(botToken, chatID string) *Notifier {
	enabled := botToken != "" && chatID != ""

	tz := os.Getenv("TZ")
	if tz == "" {
		tz = "UTC"
	}
	location, err := time.LoadLocation(tz)
	if err != nil {
		location = time.UTC
	}

	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		enabled:  enabled,
		location: location,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send formats and delivers one alert.
func (n *Notifier) Send(alert *domain.Alert) error {
	if !n.enabled {
		return nil
	}

	kindEmoji := "ℹ️"
	switch alert.Kind {
	case domain.AlertVolatility:
		kindEmoji = "📉"
	case domain.AlertStrategy:
		kindEmoji = "🤖"
	case domain.AlertSecurity:
		kindEmoji = "🔒"
	}

	message := fmt.Sprintf(
		"%s *%s*\n\n"+
			"%s\n"+
			"━━━━━━━━━━━━━━━━━\n"+
			"⚠️ Priority: `%s`\n"+
			"🕒 Time: `%s`",
		kindEmoji,
		alert.Title,
		alert.Body,
		alert.Priority,
		alert.CreatedAt.In(n.location).Format("2006-01-02 15:04:05"),
	)

	return n.sendMessage(message)
}

// sendMessage sends a message to Telegram using the Bot API
func (n *Notifier) sendMessage(text string) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)

	payload := telegramMessage{
		ChatID:    n.chatID,
		Text:      text,
		ParseMode: "Markdown",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram message: %w", err)
	}

	resp, err := n.httpClient.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}
