// Package notifier
package notifier

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

type TelegramNotifier struct {
	Token   string
	ChatID  string
	Retries int
	Delay   time.Duration

	baseURL string
	log     zerolog.Logger
}

func NewTelegramNotifier(token, chatID string, retries int, delay time.Duration, log zerolog.Logger) *TelegramNotifier {
	if retries < 1 {
		retries = 1
	}
	return &TelegramNotifier{
		Token:   token,
		ChatID:  chatID,
		Retries: retries,
		Delay:   delay,
		baseURL: "https://api.telegram.org",
		log:     log,
	}
}

func (t *TelegramNotifier) Send(message string) error {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.Token)
	resp, err := http.PostForm(apiURL, url.Values{
		"chat_id": {t.ChatID},
		"text":    {message},
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("telegram send failed: %s", resp.Status)
	}
	return nil
}

func (t *TelegramNotifier) SendWithRetry(message string) error {
	var err error
	for i := 1; i <= t.Retries; i++ {
		if err = t.Send(message); err == nil {
			return nil
		}
		t.log.Warn().Int("attempt", i).Int("max_attempts", t.Retries).Err(err).Msg("notification send failed")
		if i < t.Retries {
			time.Sleep(t.Delay)
		}
	}
	return fmt.Errorf("notification failed after %d attempts: %w", t.Retries, err)
}
