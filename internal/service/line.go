package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/remindbot/remind-server-go/internal/errors"
	"github.com/remindbot/remind-server-go/internal/model"
)

const (
	lineReplyPath = "/message/reply"
	linePushPath  = "/message/push"
	// LINE accepts at most five messages per request.
	lineMaxMessages = 5
)

type LineServiceConfig struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
	Location    *time.Location
}

// LineService sends replies and pushes through the LINE Messaging API.
type LineService struct {
	client      *http.Client
	baseURL     string
	accessToken string
	loc         *time.Location
}

func NewLineService(cfg LineServiceConfig) *LineService {
	return &LineService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		loc:         cfg.Location,
	}
}

// Reply answers a webhook event using its one-time reply token.
func (s *LineService) Reply(ctx context.Context, replyToken string, msgs ...model.OutboundMessage) error {
	if replyToken == "" {
		return apperrors.MissingRequired("replyToken")
	}
	return s.send(ctx, lineReplyPath, map[string]any{
		"replyToken": replyToken,
		"messages":   s.render(msgs),
	})
}

// Push sends messages to a user outside of a reply window.
func (s *LineService) Push(ctx context.Context, to string, msgs ...model.OutboundMessage) error {
	if to == "" {
		return apperrors.MissingRequired("to")
	}
	return s.send(ctx, linePushPath, map[string]any{
		"to":       to,
		"messages": s.render(msgs),
	})
}

// PushText is the narrow form used by the delivery job.
func (s *LineService) PushText(ctx context.Context, to, text string) error {
	return s.Push(ctx, to, model.TextMessage(text))
}

func (s *LineService) render(msgs []model.OutboundMessage) []LineMessage {
	out := make([]LineMessage, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, ToLineMessage(msg, s.loc))
	}
	if len(out) > lineMaxMessages {
		log.Warn().Int("count", len(out)).Msg("dropping messages over the LINE per-request limit")
		out = out[:lineMaxMessages]
	}
	return out
}

func (s *LineService) send(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().
			Err(err).
			Str("path", path).
			Dur("elapsed", elapsed).
			Msg("line api request error")
		return apperrors.External("line", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error().
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("body", string(respBody)).
			Dur("elapsed", elapsed).
			Msg("line api request failed")
		return apperrors.External("line", fmt.Errorf("status %d", resp.StatusCode))
	}

	log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("line api request successful")

	return nil
}
