package ai

import (
	"context"
	"errors"
	"testing"

	"quickbook/models"
	"quickbook/services/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	acmeScope   = models.TenantScope{WorkspaceID: "ws-acme", BotID: "bot-1"}
	globexScope = models.TenantScope{WorkspaceID: "ws-globex", BotID: "bot-1"}
)

type memContextStore struct {
	sessions map[string][]string
	getErr   error
}

func newMemContextStore() *memContextStore {
	return &memContextStore{sessions: map[string][]string{}}
}

func (s *memContextStore) Get(_ context.Context, scope models.TenantScope, sessionID string) (*models.ChatContext, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &models.ChatContext{Messages: append([]string(nil), s.sessions[contextKey(scope, sessionID)]...)}, nil
}

func (s *memContextStore) Append(_ context.Context, scope models.TenantScope, sessionID, message string) error {
	key := contextKey(scope, sessionID)
	s.sessions[key] = append(s.sessions[key], message)
	return nil
}

func TestDetectBookingIntent_UsesHistory(t *testing.T) {
	store := newMemContextStore()
	svc := NewDefaultChatIntentService(store, nil)
	ctx := context.Background()

	resp, err := svc.DetectBookingIntent(ctx, acmeScope, models.ChatBookingRequest{SessionID: "s1", Text: "What are your hours?"})
	require.NoError(t, err)
	assert.False(t, resp.Detected)

	resp, err = svc.DetectBookingIntent(ctx, acmeScope, models.ChatBookingRequest{SessionID: "s1", Text: "I'd like to schedule a tour"})
	require.NoError(t, err)
	assert.True(t, resp.Detected)
	assert.Equal(t, booking.TypeTour, resp.BookingType)

	resp, err = svc.DetectBookingIntent(ctx, acmeScope, models.ChatBookingRequest{SessionID: "s1", Text: "Saturday works"})
	require.NoError(t, err)
	assert.Equal(t, booking.TypeTour, resp.BookingType, "prior messages still count")

	assert.Len(t, store.sessions[contextKey(acmeScope, "s1")], 3)

	resp, err = svc.DetectBookingIntent(ctx, acmeScope, models.ChatBookingRequest{SessionID: "s2", Text: "Saturday works"})
	require.NoError(t, err)
	assert.False(t, resp.Detected)
}

func TestDetectBookingIntent_StoreFailureDegrades(t *testing.T) {
	store := newMemContextStore()
	store.getErr = errors.New("redis: connection refused")
	svc := NewDefaultChatIntentService(store, nil)

	resp, err := svc.DetectBookingIntent(context.Background(), acmeScope, models.ChatBookingRequest{SessionID: "s1", Text: "please call me"})
	require.NoError(t, err)
	assert.Equal(t, booking.TypePhoneCall, resp.BookingType)
}

func TestDetectBookingIntent_Validation(t *testing.T) {
	svc := NewDefaultChatIntentService(newMemContextStore(), nil)
	_, err := svc.DetectBookingIntent(context.Background(), acmeScope, models.ChatBookingRequest{SessionID: " ", Text: "tour"})
	var ie *booking.IntentError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, booking.CodeValidation, ie.Code)
}

func TestDetectBookingIntent_HistoryIsTenantScoped(t *testing.T) {
	store := newMemContextStore()
	svc := NewDefaultChatIntentService(store, nil)
	ctx := context.Background()

	_, err := svc.DetectBookingIntent(ctx, acmeScope, models.ChatBookingRequest{SessionID: "shared", Text: "Can I tour the unit?"})
	require.NoError(t, err)

	resp, err := svc.DetectBookingIntent(ctx, globexScope, models.ChatBookingRequest{SessionID: "shared", Text: "Saturday works"})
	require.NoError(t, err)
	assert.False(t, resp.Detected, "another workspace's history must not be read")
	assert.Len(t, store.sessions[contextKey(globexScope, "shared")], 1)
}

func TestContextKey(t *testing.T) {
	assert.Equal(t, "chat:ctx:ws-acme:bot-1:s1", contextKey(acmeScope, "s1"))
	assert.NotEqual(t, contextKey(acmeScope, "s1"), contextKey(globexScope, "s1"))
}
