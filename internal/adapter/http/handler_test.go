package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farewatch/farewatch/internal/domain"
)

// stubWatcher returns a canned run and records the plan it was given.
type stubWatcher struct {
	mu       sync.Mutex
	lastPlan domain.SearchPlan
	run      *domain.SearchRun
	err      error
}

func (s *stubWatcher) Run(_ context.Context, plan domain.SearchPlan) (*domain.SearchRun, error) {
	s.mu.Lock()
	s.lastPlan = plan
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	run := *s.run
	run.Plan = plan
	return &run, nil
}

// recordingNotifier captures sent messages.
type recordingNotifier struct {
	mu       sync.Mutex
	chatIDs  []int64
	messages []string
}

func (r *recordingNotifier) Send(_ context.Context, chatID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chatIDs = append(r.chatIDs, chatID)
	r.messages = append(r.messages, text)
	return nil
}

func (r *recordingNotifier) last() (int64, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return 0, ""
	}
	return r.chatIDs[len(r.chatIDs)-1], r.messages[len(r.messages)-1]
}

func defaultPlan() domain.SearchPlan {
	return domain.SearchPlan{
		Origin:               "SFO",
		Destination:          "OGG",
		StartDate:            "2025-07-31",
		StartDateFlexibility: 3,
		StayDuration:         domain.StayDuration{MinDays: 7, MaxDays: 8},
		MaxPrice:             600,
		Currency:             "USD",
		Adults:               1,
		MaxResults:           5,
	}
}

func completedStubRun(plan domain.SearchPlan) *domain.SearchRun {
	candidates, _ := domain.ExpandDateWindow(plan)
	return &domain.SearchRun{
		ID:         "run-1",
		Plan:       plan,
		Candidates: candidates,
		Status:     domain.RunCompleted,
	}
}

func newTestHandler(watcher *stubWatcher, notifier *recordingNotifier) *WatchHandler {
	return NewWatchHandler(HandlerConfig{
		Watcher:     watcher,
		Notifier:    notifier,
		DefaultPlan: defaultPlan(),
	})
}

func doRequest(t *testing.T, h echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))
	return rec
}

func TestWatchHandler_Health(t *testing.T) {
	h := newTestHandler(&stubWatcher{run: completedStubRun(defaultPlan())}, &recordingNotifier{})

	rec := doRequest(t, h.Health, nethttp.MethodGet, "/health", "")

	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestWatchHandler_TriggerSearch(t *testing.T) {
	watcher := &stubWatcher{run: completedStubRun(defaultPlan())}
	h := newTestHandler(watcher, &recordingNotifier{})

	rec := doRequest(t, h.TriggerSearch, nethttp.MethodPost, "/api/v1/search", "")

	assert.Equal(t, nethttp.StatusOK, rec.Code)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "run-1", envelope.Data.ID)
	assert.Equal(t, "completed", envelope.Data.Status)
	assert.Equal(t, "SFO", watcher.lastPlan.Origin)
}

func TestWatchHandler_TriggerSearch_PlanOverride(t *testing.T) {
	watcher := &stubWatcher{run: completedStubRun(defaultPlan())}
	h := newTestHandler(watcher, &recordingNotifier{})

	body := `{"destination": "HNL", "max_price": 450, "nonstop_only": true}`
	rec := doRequest(t, h.TriggerSearch, nethttp.MethodPost, "/api/v1/search", body)

	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "SFO", watcher.lastPlan.Origin)
	assert.Equal(t, "HNL", watcher.lastPlan.Destination)
	assert.InDelta(t, 450.0, watcher.lastPlan.MaxPrice, 0.001)
	assert.True(t, watcher.lastPlan.NonstopOnly)
	// Untouched fields keep the configured defaults.
	assert.Equal(t, 3, watcher.lastPlan.StartDateFlexibility)
}

func TestWatchHandler_TriggerSearch_InvalidPlan(t *testing.T) {
	watcher := &stubWatcher{err: domain.ErrInvalidPlan}
	h := newTestHandler(watcher, &recordingNotifier{})

	rec := doRequest(t, h.TriggerSearch, nethttp.MethodPost, "/api/v1/search", "")

	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

func TestWatchHandler_TriggerSearch_MalformedBody(t *testing.T) {
	watcher := &stubWatcher{run: completedStubRun(defaultPlan())}
	h := newTestHandler(watcher, &recordingNotifier{})

	rec := doRequest(t, h.TriggerSearch, nethttp.MethodPost, "/api/v1/search", `{"max_price": "lots"}`)

	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request")
}

func TestWatchHandler_TriggerSearch_NotifiesDefaultChat(t *testing.T) {
	watcher := &stubWatcher{run: completedStubRun(defaultPlan())}
	notifier := &recordingNotifier{}
	h := NewWatchHandler(HandlerConfig{
		Watcher:       watcher,
		Notifier:      notifier,
		DefaultPlan:   defaultPlan(),
		DefaultChatID: 99,
	})

	doRequest(t, h.TriggerSearch, nethttp.MethodPost, "/api/v1/search", "")

	chatID, text := notifier.last()
	assert.Equal(t, int64(99), chatID)
	assert.Contains(t, text, "Flight search for SFO -> OGG")
}

func webhookBody(text string) string {
	return `{"update_id": 1, "message": {"message_id": 10, "chat": {"id": 42}, "text": "` + text + `"}}`
}

func TestWatchHandler_Webhook_Help(t *testing.T) {
	notifier := &recordingNotifier{}
	h := newTestHandler(&stubWatcher{run: completedStubRun(defaultPlan())}, notifier)

	rec := doRequest(t, h.TelegramWebhook, nethttp.MethodPost, "/telegram/webhook", webhookBody("/help"))

	assert.Equal(t, nethttp.StatusOK, rec.Code)
	chatID, text := notifier.last()
	assert.Equal(t, int64(42), chatID)
	assert.Contains(t, text, "/search")
	assert.Contains(t, text, "/status")
}

func TestWatchHandler_Webhook_Start(t *testing.T) {
	notifier := &recordingNotifier{}
	h := newTestHandler(&stubWatcher{run: completedStubRun(defaultPlan())}, notifier)

	doRequest(t, h.TelegramWebhook, nethttp.MethodPost, "/telegram/webhook", webhookBody("/start"))

	_, text := notifier.last()
	assert.Contains(t, text, "SFO -> OGG")
	assert.Contains(t, text, "/search")
}

func TestWatchHandler_Webhook_SearchThenStatus(t *testing.T) {
	notifier := &recordingNotifier{}
	h := newTestHandler(&stubWatcher{run: completedStubRun(defaultPlan())}, notifier)

	doRequest(t, h.TelegramWebhook, nethttp.MethodPost, "/telegram/webhook", webhookBody("/search"))
	_, searchReply := notifier.last()
	assert.Contains(t, searchReply, "Flight search for SFO -> OGG")

	doRequest(t, h.TelegramWebhook, nethttp.MethodPost, "/telegram/webhook", webhookBody("/status"))
	_, statusReply := notifier.last()
	assert.Equal(t, searchReply, statusReply)
}

func TestWatchHandler_Webhook_StatusBeforeAnyRun(t *testing.T) {
	notifier := &recordingNotifier{}
	h := newTestHandler(&stubWatcher{run: completedStubRun(defaultPlan())}, notifier)

	doRequest(t, h.TelegramWebhook, nethttp.MethodPost, "/telegram/webhook", webhookBody("/status"))

	_, text := notifier.last()
	assert.Contains(t, text, "No search has run yet")
}

func TestWatchHandler_Webhook_CommandWithBotSuffix(t *testing.T) {
	notifier := &recordingNotifier{}
	h := newTestHandler(&stubWatcher{run: completedStubRun(defaultPlan())}, notifier)

	doRequest(t, h.TelegramWebhook, nethttp.MethodPost, "/telegram/webhook", webhookBody("/help@farewatch_bot"))

	_, text := notifier.last()
	assert.Contains(t, text, "/search")
}

func TestWatchHandler_Webhook_UnknownCommand(t *testing.T) {
	notifier := &recordingNotifier{}
	h := newTestHandler(&stubWatcher{run: completedStubRun(defaultPlan())}, notifier)

	doRequest(t, h.TelegramWebhook, nethttp.MethodPost, "/telegram/webhook", webhookBody("/price"))

	_, text := notifier.last()
	assert.Contains(t, text, "Unknown command")
}

func TestWatchHandler_Webhook_NonMessageUpdate(t *testing.T) {
	notifier := &recordingNotifier{}
	h := newTestHandler(&stubWatcher{run: completedStubRun(defaultPlan())}, notifier)

	rec := doRequest(t, h.TelegramWebhook, nethttp.MethodPost, "/telegram/webhook", `{"update_id": 2}`)

	assert.Equal(t, nethttp.StatusOK, rec.Code)
	_, text := notifier.last()
	assert.Empty(t, text)
}
