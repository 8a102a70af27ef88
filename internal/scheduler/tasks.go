// Package scheduler runs the periodic background jobs over asynq.
package scheduler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task type names.
const (
	// TaskLeadSweeps runs one distribution plus promotion pass. The
	// request-triggered sweeps cover a busy dashboard; this task keeps
	// the queues moving when nobody is looking.
	TaskLeadSweeps = "leads:sweeps"
)

// LeadSweepsPayload carries when the sweep was requested, for queue
// latency visibility in logs.
type LeadSweepsPayload struct {
	RequestedAt time.Time `json:"requested_at"`
}

// NewLeadSweepsTask builds the sweep task.
func NewLeadSweepsTask() (*asynq.Task, error) {
	payload, err := json.Marshal(LeadSweepsPayload{RequestedAt: time.Now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("marshal sweep payload: %w", err)
	}
	return asynq.NewTask(TaskLeadSweeps, payload), nil
}

// ParseLeadSweepsPayload decodes the sweep task payload.
func ParseLeadSweepsPayload(task *asynq.Task) (LeadSweepsPayload, error) {
	var payload LeadSweepsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadSweepsPayload{}, fmt.Errorf("unmarshal sweep payload: %w", err)
	}
	return payload, nil
}
