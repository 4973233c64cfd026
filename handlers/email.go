package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/smtptester/internal"
	"github.com/dmitrymomot/smtptester/pkg/logbook"
	"github.com/dmitrymomot/smtptester/pkg/mailer"
)

// Email serves single-message delivery.
type Email struct {
	gateway mailer.Gateway
	book    *logbook.Logger
}

// NewEmail creates the send handler. The gateway is usually a *mailer.Mailer
// so content is rendered before delivery.
func NewEmail(gateway mailer.Gateway, book *logbook.Logger) *Email {
	return &Email{gateway: gateway, book: book}
}

func (h *Email) Routes(r internal.Router) {
	r.POST("/api/send-email", h.send)
}

type sendResponse struct {
	Envelope  mailer.DeliveryEnvelope `json:"envelope"`
	Message   string                  `json:"message"`
	MessageID string                  `json:"messageId"`
	Response  string                  `json:"response"`
	Success   bool                    `json:"success"`
}

func (h *Email) send(c internal.Context) error {
	var form emailForm
	params, err := bindEmail(c, h.book, &form, &form, nil)
	if err != nil {
		return err
	}
	msg := form.message()
	to := strings.Join(msg.Envelope.To, ", ")

	start := time.Now()
	if err := h.gateway.Verify(c, params); err != nil {
		return failure(c, h.book, err, fmt.Sprintf("Failed to send to %s: %s (%dms)", to, err, time.Since(start).Milliseconds()))
	}

	res, err := h.gateway.Send(c, params, msg)
	ms := time.Since(start).Milliseconds()
	if err != nil {
		return failure(c, h.book, err, fmt.Sprintf("Failed to send to %s: %s (%dms)", to, err, ms))
	}

	h.book.Success(c, fmt.Sprintf("Successfully sent to %s (%dms)", to, ms), map[string]any{
		"messageId": res.MessageID,
		"response":  res.Response,
		"envelope":  res.Envelope,
	})
	return c.JSON(http.StatusOK, sendResponse{
		Success:   true,
		Message:   "Email sent successfully",
		MessageID: res.MessageID,
		Response:  res.Response,
		Envelope:  res.Envelope,
	})
}

// bindEmail parses a message request shared by the send and batch endpoints.
// dst is the request struct embedding form; extra reads any additional
// multipart fields.
func bindEmail(c internal.Context, book *logbook.Logger, dst any, form *emailForm, extra func()) (mailer.ConnectionParams, error) {
	err := bind(c, dst, func() error {
		if err := form.fromMultipart(c); err != nil {
			return err
		}
		if extra != nil {
			extra()
		}
		return nil
	})
	if err != nil {
		if isMissingFields(err) {
			book.Error(c, "Missing required fields (Host, Port, From, To).", nil)
		}
		return mailer.ConnectionParams{}, err
	}
	return form.params()
}
