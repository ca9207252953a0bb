package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/remindbot/remind-server-go/internal/audit"
	apperrors "github.com/remindbot/remind-server-go/internal/errors"
	"github.com/remindbot/remind-server-go/internal/httputil"
	"github.com/remindbot/remind-server-go/internal/util"
)

const LineSignatureHeader = "X-Line-Signature"

// LineSignatureMiddleware verifies that a webhook body was signed with the
// channel secret. The body is restored for the next handler.
type LineSignatureMiddleware struct {
	secret string
}

func NewLineSignatureMiddleware(secret string) *LineSignatureMiddleware {
	return &LineSignatureMiddleware{secret: secret}
}

func (m *LineSignatureMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.secret == "" {
			log.Warn().Msg("line signature verification bypassed: LINE_CHANNEL_SECRET is not configured")
			next.ServeHTTP(w, r)
			return
		}

		signature := r.Header.Get(LineSignatureHeader)
		if signature == "" {
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventSignatureFailure,
				Details: map[string]interface{}{"reason": "missing"},
			})
			httputil.WriteError(w, apperrors.Unauthorized("Missing signature"))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error().Err(err).Msg("line signature middleware: failed to read body")
			httputil.WriteError(w, apperrors.ValidationError("Failed to read request body"))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		computed := util.HmacSHA256Base64(m.secret, body)
		if !util.ConstantTimeEqual(computed, signature) {
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventSignatureFailure,
				Details: map[string]interface{}{"reason": "mismatch"},
			})
			httputil.WriteError(w, apperrors.InvalidSignature())
			return
		}

		next.ServeHTTP(w, r)
	})
}
