// Package telegram delivers formatted reports to the configured chat. The
// dispatcher owns a single sendMessage call; retry is achieved externally by
// the watchdog's separate scheduled invocation, never by looping here.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/dobsilva08/metals-reports/internal/models"
)

// Dispatcher posts report HTML to one Telegram chat (optionally a topic)
type Dispatcher struct {
	api      *tgbotapi.BotAPI
	chatID   int64
	threadID int64
	policy   string
	logger   zerolog.Logger
}

// New creates a dispatcher from configuration. With preview set and a test
// chat configured, messages go to the test chat instead of the metals group.
func New(cfg *models.Config, preview bool, logger zerolog.Logger) (*Dispatcher, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	api.Client = &http.Client{Timeout: time.Duration(cfg.TelegramTimeout) * time.Second}

	logger.Info().
		Str("username", api.Self.UserName).
		Int64("id", api.Self.ID).
		Msg("Telegram bot authorized")

	chatID := cfg.MetalsChatID
	if preview && cfg.TestChatID != 0 {
		chatID = cfg.TestChatID
	}

	return NewWithAPI(api, chatID, cfg.MessageThreadID, cfg.ConfirmPolicy, logger), nil
}

// NewWithAPI wires an already constructed Bot API client
func NewWithAPI(api *tgbotapi.BotAPI, chatID, threadID int64, policy string, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		api:      api,
		chatID:   chatID,
		threadID: threadID,
		policy:   policy,
		logger:   logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Send posts the HTML text with parse_mode=HTML and returns the delivery
// confirmation. The raw sendMessage request is used because MessageConfig in
// this library version has no message_thread_id field.
func (d *Dispatcher) Send(ctx context.Context, text string) (*models.DeliveryConfirmation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := tgbotapi.Params{
		"chat_id":    strconv.FormatInt(d.chatID, 10),
		"text":       text,
		"parse_mode": tgbotapi.ModeHTML,
	}
	params.AddBool("disable_web_page_preview", true)
	params.AddNonZero64("message_thread_id", d.threadID)

	resp, err := d.api.MakeRequest("sendMessage", params)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	if !resp.Ok {
		return nil, fmt.Errorf("telegram rejected message: %s", resp.Description)
	}

	var sent struct {
		MessageID int64 `json:"message_id"`
	}
	// Missing message id leaves the delivery ambiguous; the confirm policy
	// decides whether that still counts as delivered.
	_ = json.Unmarshal(resp.Result, &sent)

	confirmation := &models.DeliveryConfirmation{
		MessageID: sent.MessageID,
		ChatID:    d.chatID,
		Confirmed: sent.MessageID > 0 || d.policy == models.ConfirmPolicyAccepted,
	}

	d.logger.Info().
		Int64("chat_id", d.chatID).
		Int64("message_id", sent.MessageID).
		Bool("confirmed", confirmation.Confirmed).
		Int("length", len(text)).
		Msg("Report delivered to Telegram")

	return confirmation, nil
}
