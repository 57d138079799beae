package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dobsilva08/metals-reports/internal/models"
)

// newTestAPI points a Bot API client at a local fake Telegram server
func newTestAPI(t *testing.T, sendMessage http.HandlerFunc) *tgbotapi.BotAPI {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/bottest-token/getMe", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"reports","username":"reports_bot"}}`))
	})
	mux.HandleFunc("/bottest-token/sendMessage", sendMessage)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	api, err := tgbotapi.NewBotAPIWithClient("test-token", srv.URL+"/bot%s/%s", srv.Client())
	require.NoError(t, err)
	return api
}

func TestSend_ConfirmedDelivery(t *testing.T) {
	var gotForm map[string]string

	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"chat_id":                  r.FormValue("chat_id"),
			"parse_mode":               r.FormValue("parse_mode"),
			"message_thread_id":        r.FormValue("message_thread_id"),
			"disable_web_page_preview": r.FormValue("disable_web_page_preview"),
		}
		w.Write([]byte(`{"ok":true,"result":{"message_id":777}}`))
	})

	d := NewWithAPI(api, -100123, 55, models.ConfirmPolicyConfirmed, zerolog.Nop())
	conf, err := d.Send(context.Background(), "<b>título</b>\n\ncorpo")
	require.NoError(t, err)

	assert.True(t, conf.Confirmed)
	assert.EqualValues(t, 777, conf.MessageID)
	assert.EqualValues(t, -100123, conf.ChatID)

	assert.Equal(t, "-100123", gotForm["chat_id"])
	assert.Equal(t, "HTML", gotForm["parse_mode"])
	assert.Equal(t, "55", gotForm["message_thread_id"])
	assert.Equal(t, "true", gotForm["disable_web_page_preview"])
}

func TestSend_NoThreadIDOmitsParameter(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		_, present := r.Form["message_thread_id"]
		assert.False(t, present)
		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	})

	d := NewWithAPI(api, 1, 0, models.ConfirmPolicyConfirmed, zerolog.Nop())
	_, err := d.Send(context.Background(), "texto")
	require.NoError(t, err)
}

func TestSend_MissingMessageID(t *testing.T) {
	respond := func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}

	// Strict policy: an ok response without a message id is not confirmed
	d := NewWithAPI(newTestAPI(t, respond), 1, 0, models.ConfirmPolicyConfirmed, zerolog.Nop())
	conf, err := d.Send(context.Background(), "texto")
	require.NoError(t, err)
	assert.False(t, conf.Confirmed)

	// Relaxed policy accepts any ok response
	d = NewWithAPI(newTestAPI(t, respond), 1, 0, models.ConfirmPolicyAccepted, zerolog.Nop())
	conf, err = d.Send(context.Background(), "texto")
	require.NoError(t, err)
	assert.True(t, conf.Confirmed)
}

func TestSend_RejectedMessage(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`))
	})

	d := NewWithAPI(api, 1, 0, models.ConfirmPolicyConfirmed, zerolog.Nop())
	_, err := d.Send(context.Background(), "<b>broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't parse entities")
}

func TestSend_CancelledContext(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("sendMessage must not be called with a cancelled context")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewWithAPI(api, 1, 0, models.ConfirmPolicyConfirmed, zerolog.Nop())
	_, err := d.Send(ctx, "texto")
	require.ErrorIs(t, err, context.Canceled)
}
