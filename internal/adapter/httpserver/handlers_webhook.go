package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pscheid92/founderswall/internal/domain"
	apperrors "github.com/pscheid92/founderswall/internal/platform/errors"
)

const (
	headerSignature       = "X-Signature-SHA256"
	eventPaymentSucceeded = "payment.succeeded"
	maxWebhookBodyBytes   = 64 << 10
)

type paymentEvent struct {
	ID   string          `json:"id"`
	Type string          `json:"type" validate:"required"`
	Data json.RawMessage `json:"data"`
}

type paymentData struct {
	PaymentID   string    `json:"payment_id" validate:"required,max=200"`
	MakerID     string    `json:"maker_id" validate:"required,uuid"`
	AmountCents int64     `json:"amount_cents" validate:"gt=0"`
	Currency    string    `json:"currency" validate:"required,len=3"`
	CreatedAt   time.Time `json:"created_at"`
}

// handlePaymentWebhook grants lifetime access for settled payments. Redelivered
// events answer 200 so the provider stops retrying.
func (s *Server) handlePaymentWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBodyBytes+1))
	if err != nil {
		return apperrors.ValidationError("failed to read request body")
	}
	if len(body) > maxWebhookBodyBytes {
		return apperrors.ValidationError("request body too large")
	}

	if !validSignature(s.config.PaymentWebhookSecret, body, c.Request().Header.Get(headerSignature)) {
		return apperrors.UnauthorizedError("invalid webhook signature")
	}

	var event paymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperrors.ValidationError("invalid event payload")
	}
	if err := s.validateStruct(&event); err != nil {
		return err
	}

	if event.Type != eventPaymentSucceeded {
		slog.InfoContext(ctx, "Ignoring payment event", "event_id", event.ID, "type", event.Type)
		return respondJSON(c, http.StatusOK, map[string]string{"status": "ignored"})
	}

	var data paymentData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return apperrors.ValidationError("invalid payment data")
	}
	if err := s.validateStruct(&data); err != nil {
		return err
	}

	makerID, err := uuid.Parse(data.MakerID)
	if err != nil {
		return apperrors.ValidationError("maker_id must be a UUID")
	}

	granted, err := s.app.RecordPayment(ctx, domain.Payment{
		PaymentID:   data.PaymentID,
		MakerID:     makerID,
		AmountCents: data.AmountCents,
		Currency:    strings.ToUpper(data.Currency),
		ReceivedAt:  data.CreatedAt,
	})
	if err != nil {
		return err
	}

	status := "granted"
	if !granted {
		status = "duplicate"
	}
	return respondJSON(c, http.StatusOK, map[string]string{"status": status})
}

// validSignature checks a hex HMAC-SHA256 of the raw body in constant time.
func validSignature(secret string, body []byte, signature string) bool {
	got, err := hex.DecodeString(strings.TrimPrefix(signature, "sha256="))
	if err != nil || len(got) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
