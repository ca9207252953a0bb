package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/remindbot/remind-server-go/internal/errors"
	"github.com/remindbot/remind-server-go/internal/httputil"
	"github.com/remindbot/remind-server-go/internal/model"
)

// Conversation turns inbound text and actions into replies.
type Conversation interface {
	HandleText(ctx context.Context, userID, text string) ([]model.OutboundMessage, error)
	HandleAction(ctx context.Context, userID string, action model.Action) ([]model.OutboundMessage, error)
}

type Messenger interface {
	Reply(ctx context.Context, replyToken string, msgs ...model.OutboundMessage) error
	Push(ctx context.Context, to string, msgs ...model.OutboundMessage) error
}

type EventDeduper interface {
	MarkSeen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

type LineHandler struct {
	conversation Conversation
	messenger    Messenger
	deduper      EventDeduper
	limiter      RateLimiter
}

func NewLineHandler(conversation Conversation, messenger Messenger, deduper EventDeduper) *LineHandler {
	return &LineHandler{
		conversation: conversation,
		messenger:    messenger,
		deduper:      deduper,
	}
}

// WithRateLimiter drops events from users that exceed the limiter.
func (h *LineHandler) WithRateLimiter(limiter RateLimiter) *LineHandler {
	h.limiter = limiter
	return h
}

// Webhook processes every event of a batch concurrently and independently.
// Events carry no ordering guarantee. A failing event only sets the status.
func (h *LineHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var req LineWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("invalid line webhook request")
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	log.Debug().Int("events", len(req.Events)).Msg("received line webhook")

	ctx := r.Context()
	var g errgroup.Group
	for _, event := range req.Events {
		g.Go(func() error {
			return h.handleEvent(ctx, event)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to process line webhook")
		httputil.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *LineHandler) handleEvent(ctx context.Context, event LineEvent) error {
	userID := event.Source.UserID
	if userID == "" {
		log.Warn().
			Str("type", event.Type).
			Str("sourceType", event.Source.Type).
			Msg("dropping line event without userId")
		return nil
	}

	if !h.firstDelivery(ctx, event) {
		return nil
	}

	if h.limiter != nil && !h.limiter.Allow(ctx, userID) {
		log.Warn().Str("userId", userID).Str("type", event.Type).Msg("user rate limit exceeded, dropping event")
		return nil
	}

	var (
		msgs []model.OutboundMessage
		err  error
	)
	switch event.Type {
	case lineEventMessage:
		if event.Message == nil || event.Message.Type != lineMessageText {
			return nil
		}
		log.Info().
			Str("userId", userID).
			Str("text", truncate(event.Message.Text, 50)).
			Msg("received line message")
		msgs, err = h.conversation.HandleText(ctx, userID, event.Message.Text)
	case lineEventPostback:
		if event.Postback == nil {
			return nil
		}
		msgs, err = h.conversation.HandleAction(ctx, userID, parsePostback(event.Postback.Data))
	default:
		return nil
	}
	if err != nil {
		h.forget(ctx, event)
		return err
	}

	if len(msgs) > 0 {
		h.send(ctx, event.ReplyToken, userID, msgs)
	}
	return nil
}

// firstDelivery reports whether the event has not been handled before.
// Dedup store failures let the event through.
func (h *LineHandler) firstDelivery(ctx context.Context, event LineEvent) bool {
	if h.deduper == nil || event.WebhookEventID == "" {
		return true
	}
	fresh, err := h.deduper.MarkSeen(ctx, event.WebhookEventID)
	if err != nil {
		log.Warn().Err(err).Str("webhookEventId", event.WebhookEventID).Msg("event dedup unavailable")
		return true
	}
	if !fresh {
		log.Info().Str("webhookEventId", event.WebhookEventID).Msg("skipping redelivered line event")
	}
	return fresh
}

// forget clears the dedup mark of a failed event so LINE's redelivery is
// processed.
func (h *LineHandler) forget(ctx context.Context, event LineEvent) {
	if h.deduper == nil || event.WebhookEventID == "" {
		return
	}
	if err := h.deduper.Forget(context.WithoutCancel(ctx), event.WebhookEventID); err != nil {
		log.Warn().Err(err).Str("webhookEventId", event.WebhookEventID).Msg("failed to clear event dedup mark")
	}
}

// send replies with the event's token and falls back to a push. Failures are
// logged only.
func (h *LineHandler) send(ctx context.Context, replyToken, userID string, msgs []model.OutboundMessage) {
	if replyToken != "" {
		err := h.messenger.Reply(ctx, replyToken, msgs...)
		if err == nil {
			return
		}
		log.Warn().Err(err).Str("userId", userID).Msg("line reply failed, falling back to push")
	}

	if err := h.messenger.Push(ctx, userID, msgs...); err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("failed to send line message")
	}
}

func parsePostback(data string) model.Action {
	values, err := url.ParseQuery(data)
	if err != nil {
		log.Warn().Err(err).Msg("malformed postback data")
		return model.Action{}
	}

	action := model.Action{
		Name:   model.ActionName(values.Get("action")),
		Params: make(map[string]string, len(values)),
	}
	for key := range values {
		if key != "action" {
			action.Params[key] = values.Get(key)
		}
	}
	return action
}
