package notification

import (
	"context"
	"errors"
	"testing"

	"quickbook/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFCM struct {
	sent []*messaging.Message
	err  error
}

func (f *fakeFCM) Send(_ context.Context, m *messaging.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, m)
	return "msg-1", nil
}

func TestPushSender_Send(t *testing.T) {
	fcm := &fakeFCM{}
	s := &PushSender{client: fcm}

	err := s.Send(context.Background(), models.Message{
		To:      "device-token",
		Subject: "Booking requested: Haircut",
		Body:    "Sam (5551112222)",
		Data:    map[string]string{"intentId": "abc"},
	})
	require.NoError(t, err)
	require.Len(t, fcm.sent, 1)

	m := fcm.sent[0]
	assert.Equal(t, "device-token", m.Token)
	assert.Equal(t, "Booking requested: Haircut", m.Notification.Title)
	assert.Equal(t, "abc", m.Data["intentId"])
	assert.Equal(t, "staff", m.Data["role"])
	assert.Equal(t, "high", m.Android.Priority)
}

func TestPushSender_PlainErrorsAreNotRetried(t *testing.T) {
	s := &PushSender{client: &fakeFCM{err: errors.New("registration token is not valid")}}
	err := s.Send(context.Background(), models.Message{To: "bad"})
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
}

func TestNewPushSender_NilClient(t *testing.T) {
	assert.Nil(t, NewPushSender(nil))
}
