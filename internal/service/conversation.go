package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/remindbot/remind-server-go/internal/audit"
	"github.com/remindbot/remind-server-go/internal/conversation"
	apperrors "github.com/remindbot/remind-server-go/internal/errors"
	"github.com/remindbot/remind-server-go/internal/model"
	"github.com/remindbot/remind-server-go/internal/repository"
	"github.com/remindbot/remind-server-go/internal/timeparse"
	"github.com/remindbot/remind-server-go/internal/util"
)

const (
	textAskTask           = "後で思い出したいことを教えて"
	textAskTime           = "「%s」だね！いつ教えて欲しい？"
	textFinalize          = "じゃあ %s に「%s」って言うね！"
	textTimeNotUnderstood = "ごめん、時間がよく分からなかった..."
	textFallback          = "「%s」って言ってくれると登録できるよ！"
	textCancelled         = "キャンセルしたよ"
	textNoReminders       = "登録されているリマインダーはないよ"
	textReminderDeleted   = "「%s」を削除したよ"
	textReminderNotFound  = "そのリマインダーは見つからなかったよ"
)

// ConversationService runs one inbound message through the reminder dialogue
// and performs the resulting storage writes.
type ConversationService struct {
	sessions  repository.SessionRepository
	reminders repository.ReminderRepository
	machine   *conversation.Machine
	loc       *time.Location
	now       func() time.Time
}

func NewConversationService(
	sessions repository.SessionRepository,
	reminders repository.ReminderRepository,
	machine *conversation.Machine,
	loc *time.Location,
) *ConversationService {
	return &ConversationService{
		sessions:  sessions,
		reminders: reminders,
		machine:   machine,
		loc:       loc,
		now:       time.Now,
	}
}

// HandleText reads the session once, applies the transition and writes the
// session at most once. A finalized reminder is stored before the session is
// cleared, so a failed insert leaves the user waiting for a time.
func (s *ConversationService) HandleText(ctx context.Context, userID, text string) ([]model.OutboundMessage, error) {
	if userID == "" {
		return nil, apperrors.MissingRequired("userId")
	}

	now := s.now()
	session, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	session.UserID = userID

	tr := s.machine.Transition(session, text, now)

	log.Debug().
		Str("userId", userID).
		Str("from", string(session.Status)).
		Str("to", string(tr.Session.Status)).
		Str("outcome", string(tr.Outcome.Kind)).
		Str("write", tr.Write.String()).
		Msg("conversation transition")

	if tr.Outcome.Kind == conversation.OutcomeFinalize {
		reminder, err := s.reminders.Create(ctx, model.CreateReminderParams{
			UserID:   userID,
			Message:  tr.Outcome.Task,
			RemindAt: tr.Outcome.RemindAt,
		})
		if err != nil {
			return nil, apperrors.Database(fmt.Errorf("create reminder: %w", err))
		}
		audit.Log(ctx, audit.Event{
			Type:       audit.EventReminderCreate,
			UserID:     userID,
			ReminderID: reminder.ID,
			Details:    map[string]interface{}{"remindAt": reminder.RemindAt},
		})
	}

	if err := s.applyWrite(ctx, userID, tr); err != nil {
		return nil, apperrors.Database(err)
	}

	if tr.Outcome.Kind == conversation.OutcomeCancelled {
		audit.Log(ctx, audit.Event{Type: audit.EventSessionCancel, UserID: userID})
	}

	return s.render(ctx, userID, tr.Outcome)
}

func (s *ConversationService) applyWrite(ctx context.Context, userID string, tr conversation.Transition) error {
	switch tr.Write {
	case conversation.WriteSave:
		return s.sessions.Merge(ctx, userID, tr.Session.ToUpdate())
	case conversation.WriteClear:
		return s.sessions.Delete(ctx, userID)
	default:
		return nil
	}
}

func (s *ConversationService) render(ctx context.Context, userID string, outcome conversation.Outcome) ([]model.OutboundMessage, error) {
	var text string
	switch outcome.Kind {
	case conversation.OutcomeAskTask:
		text = textAskTask
	case conversation.OutcomeAskTime:
		text = fmt.Sprintf(textAskTime, outcome.Task)
	case conversation.OutcomeFinalize:
		text = fmt.Sprintf(textFinalize, timeparse.FormatLocal(outcome.RemindAt, s.loc), outcome.Task)
	case conversation.OutcomeTimeNotUnderstood:
		text = textTimeNotUnderstood
	case conversation.OutcomeCancelled:
		text = textCancelled
	case conversation.OutcomeListReminders:
		return s.listReminders(ctx, userID)
	default:
		text = fmt.Sprintf(textFallback, s.machine.Keywords().PrimaryStart())
	}
	return []model.OutboundMessage{model.TextMessage(text)}, nil
}

func (s *ConversationService) listReminders(ctx context.Context, userID string) ([]model.OutboundMessage, error) {
	reminders, err := s.reminders.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(fmt.Errorf("list reminders: %w", err))
	}
	if len(reminders) == 0 {
		return []model.OutboundMessage{model.TextMessage(textNoReminders)}, nil
	}
	return []model.OutboundMessage{model.ReminderListMessage(reminders)}, nil
}

// HandleAction executes a structured action such as a postback button.
// Unknown actions produce no messages.
func (s *ConversationService) HandleAction(ctx context.Context, userID string, action model.Action) ([]model.OutboundMessage, error) {
	if userID == "" {
		return nil, apperrors.MissingRequired("userId")
	}

	switch action.Name {
	case model.ActionDeleteReminder:
		return s.deleteReminder(ctx, userID, action.Params["id"])
	default:
		log.Debug().Str("userId", userID).Str("action", string(action.Name)).Msg("ignoring unknown action")
		return nil, nil
	}
}

func (s *ConversationService) deleteReminder(ctx context.Context, userID, id string) ([]model.OutboundMessage, error) {
	reminder, err := s.removeReminder(ctx, userID, id)
	if apperrors.HasCode(err, apperrors.ErrCodeNotFound) || apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
		log.Warn().Err(err).Str("userId", userID).Str("reminderId", id).Msg("reminder delete rejected")
		return []model.OutboundMessage{model.TextMessage(textReminderNotFound)}, nil
	}
	if err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.Event{
		Type:       audit.EventReminderDelete,
		UserID:     userID,
		ReminderID: reminder.ID,
	})

	return []model.OutboundMessage{model.TextMessage(fmt.Sprintf(textReminderDeleted, reminder.Message))}, nil
}

// removeReminder deletes a reminder owned by userID. Only ids that parse as
// UUIDs reach the store.
func (s *ConversationService) removeReminder(ctx context.Context, userID, id string) (*model.Reminder, error) {
	if !util.IsValidUUID(id) {
		return nil, apperrors.InvalidInput("reminder id", "not a UUID")
	}

	reminder, err := s.reminders.DeleteForUser(ctx, id, userID)
	if err != nil {
		return nil, apperrors.Database(fmt.Errorf("delete reminder: %w", err))
	}
	if reminder == nil {
		return nil, apperrors.NotFound("Reminder")
	}
	return reminder, nil
}
