package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestLog(t *testing.T) {
	buf := captureLog(t)

	Log(context.Background(), Event{
		Type:       EventReminderCreate,
		UserID:     "U1",
		ReminderID: "r1",
		Details: map[string]interface{}{
			"remindAt": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			"attempt":  1,
		},
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "reminder", entry["audit"])
	assert.Equal(t, "reminder_create", entry["eventType"])
	assert.Equal(t, "U1", entry["userId"])
	assert.Equal(t, "r1", entry["reminderId"])
	assert.Equal(t, float64(1), entry["attempt"])
	assert.Contains(t, entry, "remindAt")
}

func TestLogFromRequest(t *testing.T) {
	buf := captureLog(t)

	req := httptest.NewRequest("POST", "/line/webhook", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	req.Header.Set("User-Agent", "LineBotWebhook/2.0")

	LogFromRequest(req, Event{Type: EventSignatureFailure})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "signature_failure", entry["eventType"])
	assert.Equal(t, "203.0.113.7", entry["ip"])
	assert.Equal(t, "LineBotWebhook/2.0", entry["userAgent"])
	assert.NotContains(t, entry, "userId")
}
