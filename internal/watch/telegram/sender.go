package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// messageSender is the slice of *tgbotapi.BotAPI the sender needs.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender delivers messages through the Bot API client first and falls back
// to a direct sendMessage HTTP call when that fails. The fallback exists
// because the long-poll client can be wedged by a conflicting bot instance
// while the plain HTTP API still accepts sends.
type Sender struct {
	API      messageSender
	Token    string
	Endpoint string // format string like tgbotapi.APIEndpoint; defaults to it
	Client   *http.Client
	Logger   *slog.Logger
}

// Notify implements service.Notifier.
func (s *Sender) Notify(ctx context.Context, chatID int64, text string) error {
	if s.API != nil {
		if _, err := s.API.Send(tgbotapi.NewMessage(chatID, text)); err == nil {
			return nil
		} else {
			s.Logger.Warn("bot api send failed, falling back to direct call",
				"chat_id", chatID, "error", err)
		}
	}

	return s.sendDirect(ctx, chatID, text)
}

func (s *Sender) sendDirect(ctx context.Context, chatID int64, text string) error {
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	payload, err := json.Marshal(map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf(endpoint, s.Token, "sendMessage"), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sendMessage: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	return nil
}
