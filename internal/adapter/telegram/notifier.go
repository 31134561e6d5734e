// Package telegram delivers run summaries to a Telegram chat via the Bot
// API. Only sendMessage is needed; incoming updates arrive through the HTTP
// webhook handler instead.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/farewatch/farewatch/internal/infrastructure/logger"
)

// DefaultBaseURL is the Telegram Bot API host.
const DefaultBaseURL = "https://api.telegram.org"

const defaultHTTPTimeout = 10 * time.Second

// Notifier sends plain-text messages to chats.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Config holds the bot connection settings.
type Config struct {
	// BaseURL overrides the API host (tests)
	BaseURL string

	// Token is the bot token issued by BotFather
	Token string

	// HTTPClient overrides the underlying HTTP client
	HTTPClient *http.Client

	// Logger overrides the log destination (tests)
	Logger *logger.Logger
}

// BotNotifier is a Notifier backed by the Bot API.
type BotNotifier struct {
	httpClient *http.Client
	baseURL    string
	token      string
	log        *logger.Logger
}

// NewBotNotifier creates a notifier for the given bot token.
func NewBotNotifier(cfg Config) *BotNotifier {
	n := &BotNotifier{
		httpClient: cfg.HTTPClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		log:        cfg.Logger,
	}
	if n.httpClient == nil {
		n.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if n.baseURL == "" {
		n.baseURL = DefaultBaseURL
	}
	if n.log == nil {
		n.log = logger.Nop()
	}
	return n
}

// sendMessageRequest is the Bot API sendMessage payload.
type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// apiResponse is the Bot API reply envelope.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send implements Notifier.
func (n *BotNotifier) Send(ctx context.Context, chatID int64, text string) error {
	payload, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendMessage request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read sendMessage response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("failed to decode sendMessage response (status %d): %w", resp.StatusCode, err)
	}
	if !parsed.OK {
		return fmt.Errorf("sendMessage rejected (status %d): %s", resp.StatusCode, parsed.Description)
	}

	n.log.Debug().Int64("chat_id", chatID).Int("length", len(text)).Msg("Notification delivered")
	return nil
}

// NopNotifier discards messages. Used when no bot token is configured.
type NopNotifier struct{}

func (NopNotifier) Send(context.Context, int64, string) error { return nil }

// Ensure implementations satisfy the interface.
var (
	_ Notifier = (*BotNotifier)(nil)
	_ Notifier = (*NopNotifier)(nil)
)
