package notification

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"quickbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSender struct {
	mock.Mock
	channel string
}

func (m *mockSender) Channel() string { return m.channel }

func (m *mockSender) Send(ctx context.Context, msg models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func instantRetrier() *Retrier {
	r := NewRetrier(noJitter())
	r.sleep = func(context.Context, time.Duration) error { return nil }
	return r
}

func testNotification() models.IntentNotification {
	cents := int64(3500)
	return models.IntentNotification{
		Event:       models.EventBookingClicked,
		IntentID:    "abc",
		WorkspaceID: "ws-1",
		BotID:       "bot-1",
		ServiceName: "Haircut",
		PriceCents:  &cents,
		Contact:     &models.Contact{Name: "Sam", Phone: "5551112222"},
		Resolution: &models.BookingResolution{
			Handling:          models.HandlingInternal,
			FailsafeActivated: true,
			FailsafeReason:    models.FailsafeNotConfigured,
		},
		NotifyEmail:   "owner@example.com",
		NotifyPhone:   "+15550001111",
		AlertFailsafe: true,
	}
}

func TestNotifyIntent_ChannelsAreIndependent(t *testing.T) {
	email := &mockSender{channel: models.ChannelEmail}
	sms := &mockSender{channel: models.ChannelSMS}

	email.On("Send", mock.Anything, mock.MatchedBy(func(m models.Message) bool {
		return m.To == "owner@example.com" &&
			strings.Contains(m.Subject, "Haircut") &&
			strings.Contains(m.Body, "Price: $35.00") &&
			strings.Contains(m.Body, "not configured")
	})).Return(nil).Once()
	sms.On("Send", mock.Anything, mock.Anything).Return(&StatusError{StatusCode: 503}).Times(4)

	svc, err := NewDefaultNotificationService(instantRetrier(), zap.NewNop(), email, sms)
	require.NoError(t, err)

	reports := svc.NotifyIntent(context.Background(), testNotification())
	require.Len(t, reports, 2)

	byChannel := map[string]RetryResult{}
	for _, r := range reports {
		byChannel[r.Channel] = r.Result
	}
	assert.True(t, byChannel[models.ChannelEmail].Success)
	assert.Equal(t, 1, byChannel[models.ChannelEmail].Attempts)
	assert.False(t, byChannel[models.ChannelSMS].Success)
	assert.Equal(t, 4, byChannel[models.ChannelSMS].Attempts)

	email.AssertExpectations(t)
	sms.AssertExpectations(t)
}

func TestNotifyIntent_SkipsChannelsWithoutRecipient(t *testing.T) {
	email := &mockSender{channel: models.ChannelEmail}
	push := &mockSender{channel: models.ChannelPush}
	email.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

	svc, err := NewDefaultNotificationService(instantRetrier(), nil, email, push, nil)
	require.NoError(t, err)

	n := testNotification()
	n.NotifyPhone = ""
	reports := svc.NotifyIntent(context.Background(), n)
	require.Len(t, reports, 1)
	assert.Equal(t, models.ChannelEmail, reports[0].Channel)
	push.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestNotifyIntent_NoRecipients(t *testing.T) {
	svc, err := NewDefaultNotificationService(instantRetrier(), nil)
	require.NoError(t, err)
	assert.Empty(t, svc.NotifyIntent(context.Background(), testNotification()))
}

func TestNewDefaultNotificationService_RequiresRetrier(t *testing.T) {
	_, err := NewDefaultNotificationService(nil, nil)
	assert.Error(t, err)
}

func TestSMSBody(t *testing.T) {
	n := testNotification()
	assert.Equal(t, "Booking requested: Haircut - Sam (5551112222) [check booking link]", smsBody("Booking requested: Haircut", n))
}

func TestEmailSender_Send(t *testing.T) {
	s := NewEmailSender(SMTPConfig{Host: "smtp.example.com", From: "alerts@example.com", Username: "u", Password: "p"})
	require.NotNil(t, s)

	var gotAddr string
	var gotMsg []byte
	s.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotMsg = msg
		assert.Equal(t, "alerts@example.com", from)
		assert.Equal(t, []string{"owner@example.com"}, to)
		return nil
	}

	err := s.Send(context.Background(), models.Message{To: "owner@example.com", Subject: "Hi", Body: "line1\nline2"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Contains(t, string(gotMsg), "Subject: Hi\r\n")
	assert.Contains(t, string(gotMsg), "line1\r\nline2")

	err = s.Send(context.Background(), models.Message{To: "a@example.com\r\nBcc: x@evil.com", Subject: "Hi"})
	assert.Error(t, err)
	assert.False(t, IsRetryable(err))
}

func TestEmailSender_Unconfigured(t *testing.T) {
	assert.Nil(t, NewEmailSender(SMTPConfig{}))
}

func TestInlineDispatcher_DeliversInBackground(t *testing.T) {
	delivered := make(chan models.IntentNotification, 1)
	d := NewInlineDispatcher(notifierFunc(func(_ context.Context, n models.IntentNotification) []DeliveryReport {
		delivered <- n
		return nil
	}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Dispatch(ctx, testNotification()))
	cancel()

	select {
	case n := <-delivered:
		assert.Equal(t, "abc", n.IntentID)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not delivered")
	}
}

type notifierFunc func(ctx context.Context, n models.IntentNotification) []DeliveryReport

func (f notifierFunc) NotifyIntent(ctx context.Context, n models.IntentNotification) []DeliveryReport {
	return f(ctx, n)
}

var errQueueDown = errors.New("redis: connection refused")
