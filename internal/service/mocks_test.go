package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/remindbot/remind-server-go/internal/model"
)

type mockSessionRepo struct {
	mock.Mock
}

func (m *mockSessionRepo) Get(ctx context.Context, userID string) (model.Session, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Session), args.Error(1)
}

func (m *mockSessionRepo) Merge(ctx context.Context, userID string, update model.SessionUpdate) error {
	args := m.Called(ctx, userID, update)
	return args.Error(0)
}

func (m *mockSessionRepo) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockReminderRepo struct {
	mock.Mock
}

func (m *mockReminderRepo) Create(ctx context.Context, params model.CreateReminderParams) (*model.Reminder, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reminder), args.Error(1)
}

func (m *mockReminderRepo) FindByID(ctx context.Context, id string) (*model.Reminder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reminder), args.Error(1)
}

func (m *mockReminderRepo) ListByUser(ctx context.Context, userID string) ([]model.Reminder, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reminder), args.Error(1)
}

func (m *mockReminderRepo) ListDueBy(ctx context.Context, now time.Time) ([]model.Reminder, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reminder), args.Error(1)
}

func (m *mockReminderRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockReminderRepo) DeleteForUser(ctx context.Context, id, userID string) (*model.Reminder, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reminder), args.Error(1)
}
