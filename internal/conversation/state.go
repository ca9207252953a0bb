// Package conversation holds the reminder dialogue as a pure state machine.
// It decides what should happen for one inbound message; performing the
// storage and messaging side effects is left to the caller.
package conversation

import (
	"strings"
	"time"

	"github.com/remindbot/remind-server-go/internal/model"
)

// TimeResolver turns a time expression into an absolute instant.
type TimeResolver interface {
	Resolve(text string, now time.Time) (time.Time, bool)
}

// Write tells the caller what to do with the stored session.
type Write int

const (
	WriteNone Write = iota
	WriteSave
	WriteClear
)

func (w Write) String() string {
	switch w {
	case WriteSave:
		return "save"
	case WriteClear:
		return "clear"
	default:
		return "none"
	}
}

type OutcomeKind string

const (
	OutcomeAskTask           OutcomeKind = "ask_task"
	OutcomeAskTime           OutcomeKind = "ask_time"
	OutcomeFinalize          OutcomeKind = "finalize"
	OutcomeTimeNotUnderstood OutcomeKind = "time_not_understood"
	OutcomeCancelled         OutcomeKind = "cancelled"
	OutcomeListReminders     OutcomeKind = "list_reminders"
	OutcomeFallback          OutcomeKind = "fallback"
)

// Outcome describes the reply a transition calls for. Task is set for
// OutcomeAskTime and OutcomeFinalize, RemindAt only for OutcomeFinalize.
type Outcome struct {
	Kind     OutcomeKind
	Task     string
	RemindAt time.Time
}

type Transition struct {
	Session model.Session
	Write   Write
	Outcome Outcome
}

type Machine struct {
	keywords Keywords
	resolver TimeResolver
}

func NewMachine(keywords Keywords, resolver TimeResolver) *Machine {
	return &Machine{keywords: keywords, resolver: resolver}
}

func (m *Machine) Keywords() Keywords {
	return m.keywords
}

// Transition computes the next session and outcome for text. It never fails.
func (m *Machine) Transition(session model.Session, text string, now time.Time) Transition {
	if m.keywords.IsCancel(text) {
		return reset(session, now, Outcome{Kind: OutcomeCancelled})
	}

	switch session.Status {
	case model.SessionStatusWaitingForTask:
		return m.onWaitingForTask(session, text, now)
	case model.SessionStatusWaitingForTime:
		return m.onWaitingForTime(session, text, now)
	default:
		return m.onIdle(session, text, now)
	}
}

func (m *Machine) onIdle(session model.Session, text string, now time.Time) Transition {
	switch {
	case m.keywords.IsStart(text):
		next := session
		next.Status = model.SessionStatusWaitingForTask
		next.Task = nil
		next.CreatedAt = now
		return Transition{Session: next, Write: WriteSave, Outcome: Outcome{Kind: OutcomeAskTask}}
	case m.keywords.IsList(text):
		return keep(session, Outcome{Kind: OutcomeListReminders})
	default:
		return keep(session, Outcome{Kind: OutcomeFallback})
	}
}

func (m *Machine) onWaitingForTask(session model.Session, text string, now time.Time) Transition {
	if strings.TrimSpace(text) == "" {
		return keep(session, Outcome{Kind: OutcomeAskTask})
	}

	task := text
	next := session
	next.Status = model.SessionStatusWaitingForTime
	next.Task = &task
	next.CreatedAt = now
	return Transition{Session: next, Write: WriteSave, Outcome: Outcome{Kind: OutcomeAskTime, Task: task}}
}

func (m *Machine) onWaitingForTime(session model.Session, text string, now time.Time) Transition {
	if !session.HasTask() {
		return reset(session, now, Outcome{Kind: OutcomeFallback})
	}

	remindAt, ok := m.resolver.Resolve(text, now)
	if !ok {
		return keep(session, Outcome{Kind: OutcomeTimeNotUnderstood})
	}

	return reset(session, now, Outcome{
		Kind:     OutcomeFinalize,
		Task:     *session.Task,
		RemindAt: remindAt,
	})
}

func keep(session model.Session, outcome Outcome) Transition {
	return Transition{Session: session, Write: WriteNone, Outcome: outcome}
}

func reset(session model.Session, now time.Time, outcome Outcome) Transition {
	return Transition{
		Session: model.NewIdleSession(session.UserID, now),
		Write:   WriteClear,
		Outcome: outcome,
	}
}
