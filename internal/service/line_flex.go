package service

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/remindbot/remind-server-go/internal/config"
	"github.com/remindbot/remind-server-go/internal/model"
	"github.com/remindbot/remind-server-go/internal/timeparse"
)

const (
	reminderListAltText = "リマインダー一覧"
	// Postback displayText is capped by LINE.
	lineMaxDisplayText = 300
)

// LineMessage is a message object of the LINE Messaging API.
type LineMessage struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	AltText  string          `json:"altText,omitempty"`
	Contents json.RawMessage `json:"contents,omitempty"`
}

type flexBubble struct {
	Type string  `json:"type"`
	Body flexBox `json:"body"`
}

type flexBox struct {
	Type     string `json:"type"`
	Layout   string `json:"layout"`
	Spacing  string `json:"spacing,omitempty"`
	Contents []any  `json:"contents"`
}

type flexText struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Wrap    bool   `json:"wrap"`
	Flex    int    `json:"flex,omitempty"`
	Gravity string `json:"gravity,omitempty"`
}

type flexButton struct {
	Type   string         `json:"type"`
	Style  string         `json:"style"`
	Height string         `json:"height"`
	Flex   int            `json:"flex,omitempty"`
	Action flexPostAction `json:"action"`
}

type flexPostAction struct {
	Type        string `json:"type"`
	Label       string `json:"label"`
	Data        string `json:"data"`
	DisplayText string `json:"displayText"`
}

// ToLineMessage renders an outbound message. Reminder lists become a flex
// bubble with one delete button per row; times are shown in loc.
func ToLineMessage(msg model.OutboundMessage, loc *time.Location) LineMessage {
	if msg.Kind == model.OutboundKindReminderList {
		return buildReminderListFlex(msg.Reminders, loc)
	}
	return LineMessage{Type: "text", Text: truncateRunes(msg.Text, config.LineMaxTextLength)}
}

func buildReminderListFlex(reminders []model.Reminder, loc *time.Location) LineMessage {
	rows := make([]any, 0, len(reminders))
	for _, r := range reminders {
		rows = append(rows, flexBox{
			Type:   "box",
			Layout: "horizontal",
			Contents: []any{
				flexText{
					Type:    "text",
					Text:    fmt.Sprintf("%s（%s）", r.Message, timeparse.FormatLocal(r.RemindAt, loc)),
					Wrap:    true,
					Flex:    5,
					Gravity: "center",
				},
				flexButton{
					Type:   "button",
					Style:  "link",
					Height: "sm",
					Flex:   1,
					Action: flexPostAction{
						Type:        "postback",
						Label:       "☓",
						Data:        DeleteReminderData(r.ID),
						DisplayText: truncateRunes(r.Message+" を削除", lineMaxDisplayText),
					},
				},
			},
		})
	}

	contents, _ := json.Marshal(flexBubble{
		Type: "bubble",
		Body: flexBox{
			Type:     "box",
			Layout:   "vertical",
			Spacing:  "md",
			Contents: rows,
		},
	})

	return LineMessage{
		Type:     "flex",
		AltText:  reminderListAltText,
		Contents: contents,
	}
}

// DeleteReminderData is the postback payload of a reminder's delete button.
func DeleteReminderData(id string) string {
	v := url.Values{}
	v.Set("action", string(model.ActionDeleteReminder))
	v.Set("id", id)
	return v.Encode()
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
