package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/remindbot/remind-server-go/internal/model"
	redisclient "github.com/remindbot/remind-server-go/internal/redis"
)

const (
	sessionFieldStatus    = "status"
	sessionFieldTask      = "task"
	sessionFieldCreatedAt = "createdAt"
)

// SessionRepository stores one conversation session per user.
type SessionRepository interface {
	// Get returns the stored session, or an idle one when none exists.
	Get(ctx context.Context, userID string) (model.Session, error)
	// Merge writes the given fields and stamps createdAt. A nil Task removes
	// the stored task.
	Merge(ctx context.Context, userID string, update model.SessionUpdate) error
	Delete(ctx context.Context, userID string) error
}

type sessionRepo struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewSessionRepository(client redis.UniversalClient) SessionRepository {
	return &sessionRepo{client: client, now: time.Now}
}

func (r *sessionRepo) Get(ctx context.Context, userID string) (model.Session, error) {
	fields, err := r.client.HGetAll(ctx, redisclient.SessionKey(userID)).Result()
	if err != nil {
		return model.Session{}, fmt.Errorf("read session: %w", err)
	}
	if len(fields) == 0 {
		return model.NewIdleSession(userID, r.now()), nil
	}

	session := model.Session{
		UserID: userID,
		Status: model.SessionStatus(fields[sessionFieldStatus]),
	}
	if !session.Status.Valid() {
		session.Status = model.SessionStatusIdle
	}
	if task, ok := fields[sessionFieldTask]; ok {
		session.Task = &task
	}
	if raw := fields[sessionFieldCreatedAt]; raw != "" {
		if createdAt, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			session.CreatedAt = createdAt
		}
	}
	return session, nil
}

func (r *sessionRepo) Merge(ctx context.Context, userID string, update model.SessionUpdate) error {
	key := redisclient.SessionKey(userID)
	values := map[string]interface{}{
		sessionFieldStatus:    string(update.Status),
		sessionFieldCreatedAt: r.now().UTC().Format(time.RFC3339Nano),
	}
	if update.Task != nil {
		values[sessionFieldTask] = *update.Task
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values)
		if update.Task == nil {
			pipe.HDel(ctx, key, sessionFieldTask)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, redisclient.SessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
