package handler

// LINE webhook request types

type LineWebhookRequest struct {
	Destination string      `json:"destination"`
	Events      []LineEvent `json:"events"`
}

type LineEvent struct {
	Type            string               `json:"type"`
	Mode            string               `json:"mode,omitempty"`
	Timestamp       int64                `json:"timestamp"`
	WebhookEventID  string               `json:"webhookEventId,omitempty"`
	DeliveryContext *LineDeliveryContext `json:"deliveryContext,omitempty"`
	ReplyToken      string               `json:"replyToken,omitempty"`
	Source          LineSource           `json:"source"`
	Message         *LineEventMessage    `json:"message,omitempty"`
	Postback        *LinePostback        `json:"postback,omitempty"`
}

type LineDeliveryContext struct {
	IsRedelivery bool `json:"isRedelivery"`
}

type LineSource struct {
	Type    string `json:"type"`
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
}

type LineEventMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type LinePostback struct {
	Data string `json:"data"`
}

const (
	lineEventMessage  = "message"
	lineEventPostback = "postback"
	lineMessageText   = "text"
)
