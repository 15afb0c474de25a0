package notification

import (
	"context"
	"fmt"

	"quickbook/models"

	"firebase.google.com/go/v4/messaging"
)

// fcmClient is the part of *messaging.Client used here.
type fcmClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushSender delivers staff alerts to the dashboard app through FCM.
type PushSender struct {
	client fcmClient
}

// NewPushSender returns nil when Firebase is not initialised.
func NewPushSender(client *messaging.Client) *PushSender {
	if client == nil {
		return nil
	}
	return &PushSender{client: client}
}

func (s *PushSender) Channel() string { return models.ChannelPush }

// Send pushes a high-priority alert. FCM quota and availability errors are
// mapped to status errors so they are retried.
func (s *PushSender) Send(ctx context.Context, msg models.Message) error {
	data := map[string]string{"role": "staff"}
	for k, v := range msg.Data {
		data[k] = v
	}

	m := &messaging.Message{
		Token: msg.To,
		Notification: &messaging.Notification{
			Title: msg.Subject,
			Body:  msg.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	if _, err := s.client.Send(ctx, m); err != nil {
		switch {
		case messaging.IsQuotaExceeded(err):
			return &StatusError{StatusCode: 429, Body: err.Error()}
		case messaging.IsUnavailable(err), messaging.IsInternal(err):
			return &StatusError{StatusCode: 503, Body: err.Error()}
		}
		return fmt.Errorf("push: failed to send FCM message: %w", err)
	}
	return nil
}
