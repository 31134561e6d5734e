package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	farehttp "github.com/farewatch/farewatch/internal/adapter/http"
	"github.com/farewatch/farewatch/internal/adapter/telegram"
)

// fakeBotAPI captures sendMessage calls made by the notifier.
type fakeBotAPI struct {
	*httptest.Server

	mu       sync.Mutex
	messages []string
	chatIDs  []int64
}

func newFakeBotAPI(t *testing.T) *fakeBotAPI {
	t.Helper()
	api := &fakeBotAPI{}
	api.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			ChatID int64  `json:"chat_id"`
			Text   string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		api.mu.Lock()
		api.chatIDs = append(api.chatIDs, payload.ChatID)
		api.messages = append(api.messages, payload.Text)
		api.mu.Unlock()
		w.Write([]byte(`{"ok": true}`))
	}))
	t.Cleanup(api.Close)
	return api
}

func (a *fakeBotAPI) last() (int64, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.messages) == 0 {
		return 0, ""
	}
	return a.chatIDs[len(a.chatIDs)-1], a.messages[len(a.messages)-1]
}

// newAPIServer wires the full stack: echo, handler, real watcher against
// the fake provider, and a real notifier against the fake bot API.
func newAPIServer(t *testing.T, fp *FakeProvider, bot *fakeBotAPI, defaultChatID int64) *echo.Echo {
	t.Helper()

	notifier := telegram.NewBotNotifier(telegram.Config{
		BaseURL: bot.URL,
		Token:   "123:abc",
	})

	handler := farehttp.NewWatchHandler(farehttp.HandlerConfig{
		Watcher:       NewWatcher(fp, 2),
		Notifier:      notifier,
		DefaultPlan:   DefaultPlan(),
		DefaultChatID: defaultChatID,
	})

	e := echo.New()
	e.HideBanner = true
	e.POST("/api/v1/search", handler.TriggerSearch)
	e.POST("/telegram/webhook", handler.TelegramWebhook)
	e.GET("/health", handler.Health)
	return e
}

func TestAPI_TriggerSearch(t *testing.T) {
	fp := NewFakeProvider(t)
	bot := newFakeBotAPI(t)
	e := newAPIServer(t, fp, bot, 77)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(""))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Status  string `json:"status"`
			Results []struct {
				ID    string  `json:"id"`
				Price float64 `json:"price"`
			} `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "completed", envelope.Data.Status)
	require.Len(t, envelope.Data.Results, 5)
	for _, res := range envelope.Data.Results {
		assert.InDelta(t, 548.40, res.Price, 0.001)
	}

	// The default chat received the run summary.
	chatID, text := bot.last()
	assert.Equal(t, int64(77), chatID)
	assert.Contains(t, text, "Best fares under USD 600.00")
}

func TestAPI_WebhookSearchCommand(t *testing.T) {
	fp := NewFakeProvider(t)
	bot := newFakeBotAPI(t)
	e := newAPIServer(t, fp, bot, 0)

	body := `{"update_id": 1, "message": {"message_id": 5, "chat": {"id": 42}, "text": "/search"}}`
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	chatID, text := bot.last()
	assert.Equal(t, int64(42), chatID)
	assert.Contains(t, text, "Flight search for SFO -> OGG")
	assert.Contains(t, text, "548.40")
}

func TestAPI_Health(t *testing.T) {
	fp := NewFakeProvider(t)
	bot := newFakeBotAPI(t)
	e := newAPIServer(t, fp, bot, 0)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}
