package notifications

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const telegramAPI = "https://api.telegram.org"

// TelegramNotifier delivers alerts to a Telegram chat. Delivery is
// best-effort: the monitoring loop must never block on a chat outage, so
// requests carry a short timeout and failures are returned for logging
// only.
type TelegramNotifier struct {
	token      string
	chatID     string
	httpClient *http.Client
}

func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		token:      token,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TelegramNotifier) SendAlert(level, message string) error {
	text := fmt.Sprintf("%s *Risk Bot* %s\n%s",
		levelEmoji(level), time.Now().Format("15:04:05"), message)

	data := url.Values{
		"chat_id":    {t.chatID},
		"text":       {text},
		"parse_mode": {"Markdown"},
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", telegramAPI, t.token)
	resp, err := t.httpClient.Post(endpoint, "application/x-www-form-urlencoded",
		strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode, body)
	}
	return nil
}

func levelEmoji(level string) string {
	switch level {
	case "warning":
		return "⚠️"
	case "error":
		return "🚨"
	case "success":
		return "✅"
	default:
		return "ℹ️"
	}
}
