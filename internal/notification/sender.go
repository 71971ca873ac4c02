package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	errors "github.com/frahmantamala/task-tracker/internal"
)

// HTTPSender posts messages to a transactional mail API.
type HTTPSender struct {
	apiURL string
	apiKey string
	client *http.Client
	logger *slog.Logger
}

func NewHTTPSender(apiURL, apiKey string, timeout time.Duration, logger *slog.Logger) *HTTPSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSender{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (s *HTTPSender) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.NewExternalError("failed to encode notification", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return errors.NewExternalError("failed to build notification request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", msg.ID)
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.NewExternalError("notification request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.NewExternalError("notification rejected",
			fmt.Errorf("mail api returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
	}

	s.logger.Info("notification sent", "message_id", msg.ID, "subject", msg.Subject, "recipients", len(msg.To))
	return nil
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "notification delivery disabled, logging message",
		"message_id", msg.ID,
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text)
	return nil
}
