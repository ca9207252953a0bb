package repository

import (
	"context"
	"time"

	"github.com/remindbot/remind-server-go/internal/database"
	"github.com/remindbot/remind-server-go/internal/model"
)

type ReminderRepository interface {
	Create(ctx context.Context, params model.CreateReminderParams) (*model.Reminder, error)
	FindByID(ctx context.Context, id string) (*model.Reminder, error)
	ListByUser(ctx context.Context, userID string) ([]model.Reminder, error)
	ListDueBy(ctx context.Context, now time.Time) ([]model.Reminder, error)
	Delete(ctx context.Context, id string) error
	// DeleteForUser removes the reminder only when userID owns it and returns
	// the removed row, or nil when nothing matched.
	DeleteForUser(ctx context.Context, id, userID string) (*model.Reminder, error)
}

type reminderRepo struct {
	db database.DBTX
}

func NewReminderRepository(db database.DBTX) ReminderRepository {
	return &reminderRepo{db: db}
}

func (r *reminderRepo) Create(ctx context.Context, params model.CreateReminderParams) (*model.Reminder, error) {
	var reminder model.Reminder
	err := r.db.GetContext(ctx, &reminder, `
		INSERT INTO reminders (user_id, message, remind_at)
		VALUES ($1, $2, $3)
		RETURNING *
	`, params.UserID, params.Message, params.RemindAt.UTC())
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *reminderRepo) FindByID(ctx context.Context, id string) (*model.Reminder, error) {
	var reminder model.Reminder
	err := r.db.GetContext(ctx, &reminder, `SELECT * FROM reminders WHERE id = $1`, id)
	return HandleNotFound(&reminder, err)
}

func (r *reminderRepo) ListByUser(ctx context.Context, userID string) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := r.db.SelectContext(ctx, &reminders, `
		SELECT * FROM reminders
		WHERE user_id = $1
		ORDER BY remind_at ASC
	`, userID)
	return reminders, err
}

func (r *reminderRepo) ListDueBy(ctx context.Context, now time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := r.db.SelectContext(ctx, &reminders, `
		SELECT * FROM reminders
		WHERE remind_at <= $1
		ORDER BY remind_at ASC
	`, now.UTC())
	return reminders, err
}

func (r *reminderRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	return err
}

func (r *reminderRepo) DeleteForUser(ctx context.Context, id, userID string) (*model.Reminder, error) {
	var reminder model.Reminder
	err := r.db.GetContext(ctx, &reminder, `
		DELETE FROM reminders
		WHERE id = $1 AND user_id = $2
		RETURNING *
	`, id, userID)
	return HandleNotFound(&reminder, err)
}
