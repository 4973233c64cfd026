package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/smtptester/internal"
	"github.com/dmitrymomot/smtptester/pkg/batch"
	"github.com/dmitrymomot/smtptester/pkg/logbook"
)

// Defaults applied when a batch request omits count or delay.
const (
	DefaultBatchCount = 1
	DefaultBatchDelay = time.Second
)

// Batch serves the batch sender controls.
type Batch struct {
	controller *batch.Controller
	book       *logbook.Logger
}

// NewBatch creates the batch handler.
func NewBatch(controller *batch.Controller, book *logbook.Logger) *Batch {
	return &Batch{controller: controller, book: book}
}

func (h *Batch) Routes(r internal.Router) {
	r.POST("/api/batch", h.start)
	r.GET("/api/batch", h.status)
	r.POST("/api/batch/pause", h.pause)
	r.POST("/api/batch/resume", h.resume)
	r.POST("/api/batch/cancel", h.cancel)
}

type batchForm struct {
	emailForm

	Count field `json:"count"`
	// Delay between messages in milliseconds.
	Delay field `json:"delay"`
}

type batchResponse struct {
	Batch   batch.Status `json:"batch"`
	Success bool         `json:"success"`
}

func (h *Batch) start(c internal.Context) error {
	var form batchForm
	params, err := bindEmail(c, h.book, &form, &form.emailForm, func() {
		form.Count = field(c.Form("count"))
		form.Delay = field(c.Form("delay"))
	})
	if err != nil {
		return err
	}

	count, err := intOr(form.Count, DefaultBatchCount)
	if err != nil || count < 1 {
		return internal.ErrBadRequest("Count must be a positive number", internal.WithFields("count"))
	}
	delayMs, err := intOr(form.Delay, int(DefaultBatchDelay/time.Millisecond))
	if err != nil || delayMs < 0 {
		return internal.ErrBadRequest("Delay must be zero or more milliseconds", internal.WithFields("delay"))
	}

	job := batch.Job{
		Params:     params,
		Message:    *form.message(),
		TotalCount: count,
		Delay:      time.Duration(delayMs) * time.Millisecond,
	}
	// The batch outlives the request; shutdown stops it through the controller.
	if err := h.controller.Start(context.WithoutCancel(c), job); err != nil {
		return stateError(err)
	}

	return c.JSON(http.StatusAccepted, batchResponse{Success: true, Batch: h.controller.Snapshot()})
}

func (h *Batch) status(c internal.Context) error {
	return c.JSON(http.StatusOK, batchResponse{Success: true, Batch: h.controller.Snapshot()})
}

func (h *Batch) pause(c internal.Context) error {
	return h.control(c, h.controller.Pause)
}

func (h *Batch) resume(c internal.Context) error {
	return h.control(c, h.controller.Resume)
}

func (h *Batch) cancel(c internal.Context) error {
	return h.control(c, h.controller.Cancel)
}

func (h *Batch) control(c internal.Context, fn func() error) error {
	if err := fn(); err != nil {
		return stateError(err)
	}
	return c.JSON(http.StatusOK, batchResponse{Success: true, Batch: h.controller.Snapshot()})
}

func stateError(err error) error {
	switch {
	case errors.Is(err, batch.ErrAlreadyRunning):
		return internal.ErrConflict("A batch is already running", internal.WithError(err), internal.WithErrorCode("already_running"))
	case errors.Is(err, batch.ErrNotSending):
		return internal.ErrConflict("No batch is sending", internal.WithError(err), internal.WithErrorCode("not_sending"))
	case errors.Is(err, batch.ErrNotPaused):
		return internal.ErrConflict("Batch is not paused", internal.WithError(err), internal.WithErrorCode("not_paused"))
	case errors.Is(err, batch.ErrNotActive):
		return internal.ErrConflict("No active batch", internal.WithError(err), internal.WithErrorCode("not_active"))
	case errors.Is(err, batch.ErrInvalidJob):
		return internal.ErrBadRequest("Invalid batch", internal.WithError(err))
	default:
		return err
	}
}

func intOr(f field, def int) (int, error) {
	if f == "" {
		return def, nil
	}
	return strconv.Atoi(string(f))
}
