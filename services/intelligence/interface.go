// File: services/intelligence/interface.go
package ai

import (
	"context"
	"strings"

	"quickbook/models"
	"quickbook/services/booking"

	"go.uber.org/zap"
)

// ChatIntentService detects booking intent in a chat conversation.
type ChatIntentService interface {
	DetectBookingIntent(ctx context.Context, scope models.TenantScope, req models.ChatBookingRequest) (*models.ChatBookingResponse, error)
}

type DefaultChatIntentService struct {
	ctxStore ContextStore
	logger   *zap.Logger
}

func NewDefaultChatIntentService(ctxStore ContextStore, logger *zap.Logger) *DefaultChatIntentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultChatIntentService{ctxStore: ctxStore, logger: logger}
}

// DetectBookingIntent classifies the new message against the session history,
// then records it. Context store failures degrade to classifying the message
// alone.
func (s *DefaultChatIntentService) DetectBookingIntent(ctx context.Context, scope models.TenantScope, req models.ChatBookingRequest) (*models.ChatBookingResponse, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	text := strings.TrimSpace(req.Text)
	if sessionID == "" || text == "" {
		return nil, booking.NewValidationError("sessionId and text are required")
	}

	var prior []string
	history, err := s.ctxStore.Get(ctx, scope, sessionID)
	if err != nil {
		s.logger.Warn("chat context unavailable",
			zap.String("workspaceId", scope.WorkspaceID), zap.String("sessionId", sessionID), zap.Error(err))
	} else {
		prior = history.Messages
	}

	bookingType, detected := booking.Classify(text, prior)

	if err := s.ctxStore.Append(ctx, scope, sessionID, text); err != nil {
		s.logger.Warn("failed to save chat context", zap.String("sessionId", sessionID), zap.Error(err))
	}

	return &models.ChatBookingResponse{BookingType: bookingType, Detected: detected}, nil
}
