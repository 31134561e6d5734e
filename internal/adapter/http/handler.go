// Package http provides the HTTP handler layer for the fare watch API:
// the search trigger endpoint, the Telegram webhook, and health checks.
package http

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/farewatch/farewatch/internal/adapter/http/response"
	"github.com/farewatch/farewatch/internal/adapter/telegram"
	"github.com/farewatch/farewatch/internal/domain"
	"github.com/farewatch/farewatch/internal/infrastructure/logger"
	"github.com/farewatch/farewatch/internal/usecase"
)

const helpText = `Fare watch commands:
/search - run the configured fare search
/status - show the latest run summary
/help - show this message`

// WatchHandler handles HTTP requests for fare watch endpoints.
type WatchHandler struct {
	watcher       usecase.FlightWatcher
	notifier      telegram.Notifier
	defaultPlan   domain.SearchPlan
	defaultChatID int64
	runTimeout    time.Duration
	log           *logger.Logger

	mu      sync.RWMutex
	lastRun *domain.SearchRun
}

// HandlerConfig wires the handler's collaborators.
type HandlerConfig struct {
	Watcher       usecase.FlightWatcher
	Notifier      telegram.Notifier
	DefaultPlan   domain.SearchPlan
	DefaultChatID int64
	RunTimeout    time.Duration
	Logger        *logger.Logger
}

// NewWatchHandler creates a handler over the given watcher.
func NewWatchHandler(cfg HandlerConfig) *WatchHandler {
	h := &WatchHandler{
		watcher:       cfg.Watcher,
		notifier:      cfg.Notifier,
		defaultPlan:   cfg.DefaultPlan,
		defaultChatID: cfg.DefaultChatID,
		runTimeout:    cfg.RunTimeout,
		log:           cfg.Logger,
	}
	if h.notifier == nil {
		h.notifier = telegram.NopNotifier{}
	}
	if h.runTimeout <= 0 {
		h.runTimeout = 10 * time.Minute
	}
	if h.log == nil {
		h.log = logger.Nop()
	}
	return h
}

// TriggerSearch handles POST /api/v1/search
//
// @Summary Run a fare search
// @Description Runs a full fare search using the configured plan, optionally overridden by the request body
// @Tags search
// @Accept json
// @Produce json
// @Param request body SearchRequest false "Plan overrides"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorDetail "Validation error"
// @Failure 503 {object} response.ErrorDetail "Provider unavailable"
// @Failure 504 {object} response.ErrorDetail "Run timed out"
// @Router /api/v1/search [post]
func (h *WatchHandler) TriggerSearch(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return response.InvalidRequestBody(c)
	}

	plan := req.MergeInto(h.defaultPlan)

	run, err := h.runSearch(c.Request().Context(), plan)
	if err != nil {
		return h.handleError(c, err)
	}

	if h.defaultChatID != 0 {
		h.notify(c.Request().Context(), h.defaultChatID, usecase.FormatRun(run))
	}

	return response.OK(c, response.Success(run))
}

// TelegramWebhook handles POST /telegram/webhook
//
// Commands are processed synchronously and the reply is delivered through
// the Bot API, not the webhook response body.
func (h *WatchHandler) TelegramWebhook(c echo.Context) error {
	var update Update
	if err := c.Bind(&update); err != nil {
		return response.InvalidRequestBody(c)
	}

	// Non-message updates (edits, joins) are acknowledged and dropped.
	if update.Message == nil || update.Message.Text == "" {
		return c.NoContent(nethttp.StatusOK)
	}

	chatID := update.Message.Chat.ID
	reply := h.dispatchCommand(c.Request().Context(), update.Message.Text)
	h.notify(c.Request().Context(), chatID, reply)

	return c.NoContent(nethttp.StatusOK)
}

// Health handles GET /health
// Simple health check endpoint.
func (h *WatchHandler) Health(c echo.Context) error {
	return response.Health(c)
}

// dispatchCommand maps a chat command to its reply text.
func (h *WatchHandler) dispatchCommand(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return helpText
	}

	// "/search@my_bot" arrives in group chats.
	command, _, _ := strings.Cut(fields[0], "@")

	switch command {
	case "/start":
		return "Watching fares for " + h.defaultPlan.Route() + ".\n\n" + helpText

	case "/help":
		return helpText

	case "/status":
		h.mu.RLock()
		last := h.lastRun
		h.mu.RUnlock()
		if last == nil {
			return "No search has run yet. Send /search to start one."
		}
		return usecase.FormatRun(last)

	case "/search":
		run, err := h.runSearch(ctx, h.defaultPlan)
		if err != nil {
			return fmt.Sprintf("Cannot start search: %v", err)
		}
		return usecase.FormatRun(run)

	default:
		return "Unknown command. Send /help for the command list."
	}
}

// runSearch executes one bounded search run and records it for /status.
func (h *WatchHandler) runSearch(ctx context.Context, plan domain.SearchPlan) (*domain.SearchRun, error) {
	ctx, cancel := context.WithTimeout(ctx, h.runTimeout)
	defer cancel()

	run, err := h.watcher.Run(ctx, plan)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.lastRun = run
	h.mu.Unlock()

	return run, nil
}

// notify delivers a chat message, logging delivery trouble instead of
// failing the request.
func (h *WatchHandler) notify(ctx context.Context, chatID int64, text string) {
	if err := h.notifier.Send(ctx, chatID, text); err != nil {
		h.log.Warn().Int64("chat_id", chatID).Err(err).Msg("Failed to deliver notification")
	}
}

// handleError maps domain errors to appropriate HTTP responses.
func (h *WatchHandler) handleError(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrInvalidPlan) || errors.Is(err, domain.ErrInvalidQuery) {
		return response.ValidationErrorWithMessage(c, err.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return response.GatewayTimeout(c)
	}

	if errors.Is(err, context.Canceled) {
		return response.RequestCancelled(c)
	}

	if errors.Is(err, domain.ErrProviderUnavailable) {
		return response.ProviderUnavailable(c)
	}

	return response.InternalServerError(c)
}
