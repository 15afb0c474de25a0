package tasks

import (
	"encoding/json"
	"time"

	"quickbook/models"

	"github.com/hibiken/asynq"
)

const TypeIntentNotify = "intent:notify"

// NewIntentNotifyTask builds the queued staff alert. Retries happen inside the
// delivery layer per channel, so the task itself is never re-run.
func NewIntentNotifyTask(payload models.IntentNotification) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeIntentNotify, b)
	opts := []asynq.Option{
		asynq.MaxRetry(0),
		asynq.Timeout(3 * time.Minute),
		asynq.Queue("notifications"),
	}
	return task, opts, nil
}

// ParseIntentNotifyTask decodes a queued staff alert.
func ParseIntentNotifyTask(task *asynq.Task) (models.IntentNotification, error) {
	var p models.IntentNotification
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}
