package model

import "time"

type Reminder struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Message   string    `db:"message" json:"message"`
	RemindAt  time.Time `db:"remind_at" json:"remindAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Deliverable reports whether the record has everything a push needs.
func (r Reminder) Deliverable() bool {
	return r.UserID != "" && r.Message != ""
}

type CreateReminderParams struct {
	UserID   string
	Message  string
	RemindAt time.Time
}
