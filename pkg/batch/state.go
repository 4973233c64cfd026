package batch

import (
	"encoding/json"
	"time"

	"github.com/dmitrymomot/smtptester/pkg/mailer"
)

// State is the lifecycle state of the controller.
type State int32

const (
	Idle State = iota
	Sending
	Paused
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	case Paused:
		return "paused"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Progress counts attempts made, successful or not.
type Progress struct {
	Sent  int `json:"sent"`
	Total int `json:"total"`
}

// Status is a point-in-time view of the controller.
type Status struct {
	StartedAt time.Time `json:"startedAt,omitzero"`
	BatchID   string    `json:"batchId,omitempty"`
	State     State     `json:"state"`
	Progress  Progress  `json:"progress"`
}

// Job describes a batch. It is copied on Start.
type Job struct {
	Params     mailer.ConnectionParams
	Message    mailer.Message
	TotalCount int
	Delay      time.Duration
}

func (j Job) validate() error {
	if j.TotalCount < 1 || j.Delay < 0 {
		return ErrInvalidJob
	}
	return nil
}

