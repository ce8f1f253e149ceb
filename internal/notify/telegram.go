package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"wanwatch/internal/config"

	"go.uber.org/zap"
)

// maxResponseSize bounds how much of a Bot API reply is read
const maxResponseSize = 1 << 20

// TelegramNotifier represents Telegram notifier
type TelegramNotifier struct {
	config *config.TelegramConfig
	logger *zap.Logger
	client *http.Client
}

// TelegramMessage represents Telegram message
type TelegramMessage struct {
	ChatID              string `json:"chat_id"`
	Text                string `json:"text"`
	DisableNotification bool   `json:"disable_notification"`
}

// telegramResponse is the part of a Bot API reply we rely on.
// OK is a pointer so a missing field is distinguishable from false.
type telegramResponse struct {
	OK          *bool  `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}

// NewTelegramNotifier creates new Telegram notifier
func NewTelegramNotifier(cfg *config.TelegramConfig, logger *zap.Logger) (*TelegramNotifier, error) {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, fmt.Errorf("telegram bot token and chat ID are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			DisableCompression:  true,
			MaxIdleConnsPerHost: 5,
		},
	}

	return &TelegramNotifier{
		config: cfg,
		logger: logger,
		client: client,
	}, nil
}

// Send implements Sender. It posts text to the configured chat once and
// reports success only when the reply carries "ok": true.
func (n *TelegramNotifier) Send(ctx context.Context, text string) bool {
	if err := n.sendMessage(ctx, text); err != nil {
		n.logger.Warn("Failed to send telegram message",
			zap.String("chat_id", n.config.ChatID),
			zap.Error(err))
		return false
	}

	n.logger.Info("Telegram message sent", zap.String("chat_id", n.config.ChatID))
	return true
}

// sendMessage sends a message to the configured chat ID
func (n *TelegramNotifier) sendMessage(ctx context.Context, text string) error {
	msg := TelegramMessage{
		ChatID:              n.config.ChatID,
		Text:                text,
		DisableNotification: false,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		// the URL embeds the bot token; keep it out of logs
		return fmt.Errorf("failed to send request: %w", redactURLError(err))
	}

	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			n.logger.Debug("Failed to close response body", zap.Error(err))
		}
	}(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	return parseTelegramResponse(resp.StatusCode, body)
}

// parseTelegramResponse decides delivery from the reply body's "ok" flag
func parseTelegramResponse(status int, body []byte) error {
	var r telegramResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("telegram API returned non-JSON response (status %d): %w", status, err)
	}
	if r.OK == nil {
		return fmt.Errorf("telegram API response has no \"ok\" field (status %d)", status)
	}
	if !*r.OK {
		if r.Description != "" {
			return fmt.Errorf("telegram API error %d: %s", r.ErrorCode, r.Description)
		}
		return fmt.Errorf("telegram API returned ok=false (status %d)", status)
	}
	return nil
}

func (n *TelegramNotifier) endpoint() string {
	return fmt.Sprintf("%s/bot%s/sendMessage", n.config.APIBase, n.config.BotToken)
}

// redactURLError strips the request URL from transport errors
func redactURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}
