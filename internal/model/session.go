package model

import "time"

// Session is the per-user conversation state. Task is set only while the
// session waits for a time.
type Session struct {
	UserID    string        `json:"userId"`
	Status    SessionStatus `json:"status"`
	Task      *string       `json:"task,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

func NewIdleSession(userID string, now time.Time) Session {
	return Session{
		UserID:    userID,
		Status:    SessionStatusIdle,
		CreatedAt: now,
	}
}

// HasTask reports whether a non-empty task has been captured.
func (s Session) HasTask() bool {
	return s.Task != nil && *s.Task != ""
}

// SessionUpdate is a partial session written with merge semantics. A nil Task
// removes any stored task.
type SessionUpdate struct {
	Status SessionStatus
	Task   *string
}

func (s Session) ToUpdate() SessionUpdate {
	return SessionUpdate{Status: s.Status, Task: s.Task}
}
