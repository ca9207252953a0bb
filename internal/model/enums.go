package model

type SessionStatus string

const (
	SessionStatusIdle           SessionStatus = "idle"
	SessionStatusWaitingForTask SessionStatus = "waiting_for_task"
	SessionStatusWaitingForTime SessionStatus = "waiting_for_time"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusIdle, SessionStatusWaitingForTask, SessionStatusWaitingForTime:
		return true
	}
	return false
}

type OutboundKind string

const (
	OutboundKindText         OutboundKind = "text"
	OutboundKindReminderList OutboundKind = "reminder_list"
)

type ActionName string

const (
	ActionDeleteReminder ActionName = "deleteReminder"
)
