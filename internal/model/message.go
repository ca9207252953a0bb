package model

// OutboundMessage is a transport-independent reply produced by the
// conversation service.
type OutboundMessage struct {
	Kind      OutboundKind
	Text      string
	Reminders []Reminder
}

func TextMessage(text string) OutboundMessage {
	return OutboundMessage{Kind: OutboundKindText, Text: text}
}

func ReminderListMessage(reminders []Reminder) OutboundMessage {
	return OutboundMessage{Kind: OutboundKindReminderList, Reminders: reminders}
}

// Action is a structured user action such as a postback button press.
type Action struct {
	Name   ActionName
	Params map[string]string
}
