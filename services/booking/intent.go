package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	intentRepo "quickbook/database/repository/intent"
	tenantRepo "quickbook/database/repository/tenant"
	"quickbook/models"

	"go.uber.org/zap"
)

const leadSourceQuickBook = "quick_book"

// FailsafeSettingsUnavailable is recorded when tenant settings cannot be read
// at click time.
const FailsafeSettingsUnavailable = "settings unavailable"

// StartIntent opens an intent for the selected service. The offering is
// snapshotted so later catalogue edits cannot change the price mid-flow.
func (s *DefaultIntentService) StartIntent(ctx context.Context, scope models.TenantScope, input StartIntentInput) (*models.BookingIntent, error) {
	serviceName := strings.TrimSpace(input.ServiceName)
	if serviceName == "" {
		return nil, NewValidationError("serviceName is required")
	}
	if strings.TrimSpace(input.SessionID) == "" {
		return nil, NewValidationError("sessionId is required")
	}
	if input.PriceCents != nil && *input.PriceCents < 0 {
		return nil, NewValidationError("priceCents must not be negative")
	}

	history := s.sessionHistory(ctx, scope, input.SessionID)

	now := s.now()
	intent := &models.BookingIntent{
		ID:            s.newID(),
		WorkspaceID:   scope.WorkspaceID,
		BotID:         scope.BotID,
		SessionID:     input.SessionID,
		ServiceName:   serviceName,
		PriceCents:    input.PriceCents,
		DurationLabel: strings.TrimSpace(input.DurationLabel),
		BookingType:   bookingTypeFor(input.BookingType, serviceName, history),
		Status:        models.IntentStarted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Intents.Create(ctx, intent); err != nil {
		s.Logger.Error("StartIntent: failed to persist intent",
			zap.String("workspaceId", scope.WorkspaceID), zap.String("botId", scope.BotID), zap.Error(err))
		return nil, fmt.Errorf("failed to start intent: %w", err)
	}

	s.Logger.Info("StartIntent: intent started",
		zap.String("intentId", intent.ID),
		zap.String("bookingType", intent.BookingType),
		zap.String("service", intent.ServiceName))
	return intent, nil
}

// bookingTypeFor prefers the explicit selection, then a specific intent in
// the service name or the chat so far, then the service name itself so
// per-type overrides keyed by service id still apply.
func bookingTypeFor(explicit, serviceName string, history []string) string {
	if t := NormalizeBookingType(explicit); t != "" {
		return t
	}
	if t, ok := Classify(serviceName, history); ok && t != TypeAppointment {
		return t
	}
	if t := NormalizeBookingType(serviceName); t != "" {
		return t
	}
	return TypeAppointment
}

// sessionHistory reads the chat messages of the session. A failing store
// yields no history.
func (s *DefaultIntentService) sessionHistory(ctx context.Context, scope models.TenantScope, sessionID string) []string {
	if s.History == nil {
		return nil
	}
	chat, err := s.History.Get(ctx, scope, strings.TrimSpace(sessionID))
	if err != nil {
		s.Logger.Warn("StartIntent: chat history unavailable",
			zap.String("workspaceId", scope.WorkspaceID), zap.String("sessionId", sessionID), zap.Error(err))
		return nil
	}
	if chat == nil {
		return nil
	}
	return chat.Messages
}

// AttachContact records the visitor contact and the lead. Calling it again
// before click replaces the contact (last write wins).
func (s *DefaultIntentService) AttachContact(ctx context.Context, scope models.TenantScope, intentID string, contact models.Contact) (*AttachContactResult, error) {
	contact = models.Contact{
		Name:  strings.TrimSpace(contact.Name),
		Phone: strings.TrimSpace(contact.Phone),
		Email: strings.TrimSpace(contact.Email),
	}
	if contact.Name == "" || !contact.HasChannel() {
		return nil, ErrContactRequired
	}

	intent, err := s.loadIntent(ctx, scope, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status.AtLeast(models.IntentClicked) {
		return nil, ErrAlreadyBooked
	}
	firstCapture := intent.Status == models.IntentStarted

	leadID, err := s.Leads.Upsert(ctx, models.Lead{
		WorkspaceID: intent.WorkspaceID,
		BotID:       intent.BotID,
		IntentID:    intent.ID,
		SessionID:   intent.SessionID,
		Name:        contact.Name,
		Phone:       contact.Phone,
		Email:       contact.Email,
		Source:      leadSourceQuickBook,
	})
	if err != nil {
		s.Logger.Error("AttachContact: failed to save lead", zap.String("intentId", intentID), zap.Error(err))
		return nil, fmt.Errorf("failed to save contact: %w", err)
	}

	updated, err := s.Intents.AttachContact(ctx, intentID, contact, leadID)
	if err != nil {
		switch {
		case errors.Is(err, intentRepo.ErrStaleTransition):
			return nil, ErrAlreadyBooked
		case errors.Is(err, intentRepo.ErrIntentNotFound):
			return nil, ErrIntentNotFound
		}
		s.Logger.Error("AttachContact: failed to update intent", zap.String("intentId", intentID), zap.Error(err))
		return nil, fmt.Errorf("failed to attach contact: %w", err)
	}

	if firstCapture {
		s.notify(ctx, models.EventLeadCaptured, updated, nil)
	}
	return &AttachContactResult{LeadID: leadID, Intent: updated}, nil
}

// Click resolves the handoff once. Later clicks replay the recorded
// resolution even if tenant settings changed in between.
func (s *DefaultIntentService) Click(ctx context.Context, scope models.TenantScope, intentID string) (*ClickResult, error) {
	intent, err := s.loadIntent(ctx, scope, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Resolution != nil {
		return clickResult(intent, true), nil
	}
	if !intent.Status.AtLeast(models.IntentLeadCaptured) {
		return nil, ErrContactNotCaptured
	}

	settings := s.loadSettings(ctx, scope)
	var resolution models.BookingResolution
	providerName := ""
	if settings == nil {
		resolution = failsafe(FailsafeSettingsUnavailable)
	} else {
		resolution = s.Resolver.Resolve(NewResolutionContext(intent.BookingType, settings))
		if resolution.IsExternal() {
			providerName = settings.ExternalBookingProviderName
		}
	}
	updated, err := s.Intents.RecordClick(ctx, intentID, resolution, providerName)
	if err != nil {
		if !errors.Is(err, intentRepo.ErrStaleTransition) {
			s.Logger.Error("Click: failed to record resolution", zap.String("intentId", intentID), zap.Error(err))
			return nil, fmt.Errorf("failed to record booking: %w", err)
		}
		// Another click got there first; answer with what it recorded.
		current, getErr := s.loadIntent(ctx, scope, intentID)
		if getErr != nil {
			return nil, getErr
		}
		if current.Resolution == nil {
			return nil, ErrContactNotCaptured
		}
		return clickResult(current, true), nil
	}
	recordResolution(intent.BookingType, resolution)

	if resolution.FailsafeActivated {
		s.Logger.Warn("Click: failsafe activated",
			zap.String("intentId", intentID),
			zap.String("workspaceId", scope.WorkspaceID),
			zap.String("reason", resolution.FailsafeReason))
	}
	s.notify(ctx, models.EventBookingClicked, updated, settings)
	return clickResult(updated, false), nil
}

// Complete marks a clicked intent done. Completing twice is a no-op.
func (s *DefaultIntentService) Complete(ctx context.Context, scope models.TenantScope, intentID string) (*models.BookingIntent, error) {
	intent, err := s.loadIntent(ctx, scope, intentID)
	if err != nil {
		return nil, err
	}
	switch intent.Status {
	case models.IntentDone:
		return intent, nil
	case models.IntentClicked:
	default:
		return nil, ErrNotClicked
	}

	updated, err := s.Intents.MarkDone(ctx, intentID)
	if err != nil {
		if errors.Is(err, intentRepo.ErrStaleTransition) {
			return s.loadIntent(ctx, scope, intentID)
		}
		return nil, fmt.Errorf("failed to complete intent: %w", err)
	}
	return updated, nil
}

// GetIntent returns an intent of the scope.
func (s *DefaultIntentService) GetIntent(ctx context.Context, scope models.TenantScope, intentID string) (*models.BookingIntent, error) {
	return s.loadIntent(ctx, scope, intentID)
}

// ExportIntents lists intents for the retention/export collaborator.
func (s *DefaultIntentService) ExportIntents(ctx context.Context, workspaceID string, since time.Time, limit, offset int) ([]models.BookingIntent, error) {
	if workspaceID == "" {
		return nil, NewValidationError("workspaceId is required")
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return s.Intents.ListByWorkspace(ctx, workspaceID, since, limit, offset)
}

// loadIntent fetches an intent and hides intents of other tenants.
func (s *DefaultIntentService) loadIntent(ctx context.Context, scope models.TenantScope, intentID string) (*models.BookingIntent, error) {
	if strings.TrimSpace(intentID) == "" {
		return nil, ErrIntentNotFound
	}
	intent, err := s.Intents.GetByID(ctx, intentID)
	if err != nil {
		if errors.Is(err, intentRepo.ErrIntentNotFound) {
			return nil, ErrIntentNotFound
		}
		return nil, fmt.Errorf("failed to load intent: %w", err)
	}
	if !scope.Owns(intent) {
		return nil, ErrIntentNotFound
	}
	return intent, nil
}

// loadSettings reads tenant settings fresh. A bot without saved settings gets
// empty settings (internal handling); a read failure returns nil.
func (s *DefaultIntentService) loadSettings(ctx context.Context, scope models.TenantScope) *models.TenantSettings {
	settings, err := s.Settings.GetBookingSettings(ctx, scope.WorkspaceID, scope.BotID)
	if err != nil {
		if errors.Is(err, tenantRepo.ErrSettingsNotFound) {
			return &models.TenantSettings{WorkspaceID: scope.WorkspaceID, BotID: scope.BotID}
		}
		s.Logger.Error("failed to load booking settings",
			zap.String("workspaceId", scope.WorkspaceID), zap.String("botId", scope.BotID), zap.Error(err))
		return nil
	}
	return settings
}

func clickResult(intent *models.BookingIntent, replayed bool) *ClickResult {
	res := *intent.Resolution
	out := &ClickResult{
		Handling:     res.Handling,
		RedirectType: res.RedirectType(),
		Resolution:   res,
		Replayed:     replayed,
	}
	if res.IsExternal() {
		out.URL = res.ExternalURL
		out.ProviderName = intent.ProviderName
	}
	return out
}

// notify hands a staff alert to the dispatcher. The transition is already
// durable, so failures are only logged.
func (s *DefaultIntentService) notify(ctx context.Context, event models.NotificationEvent, intent *models.BookingIntent, settings *models.TenantSettings) {
	if s.Dispatcher == nil || intent == nil {
		return
	}
	if settings == nil {
		settings = s.loadSettings(ctx, models.TenantScope{WorkspaceID: intent.WorkspaceID, BotID: intent.BotID})
		if settings == nil {
			return
		}
	}

	n := models.IntentNotification{
		Event:          event,
		IntentID:       intent.ID,
		WorkspaceID:    intent.WorkspaceID,
		BotID:          intent.BotID,
		ServiceName:    intent.ServiceName,
		PriceCents:     intent.PriceCents,
		Contact:        intent.Contact,
		Resolution:     intent.Resolution,
		ProviderName:   intent.ProviderName,
		NotifyEmail:    settings.NotifyEmail,
		NotifyPhone:    settings.NotifyPhone,
		NotifyFCMToken: settings.NotifyFCMToken,
	}
	if intent.Resolution != nil && intent.Resolution.FailsafeActivated && settings.EnableFailsafe {
		n.AlertFailsafe = true
	}

	if err := s.Dispatcher.Dispatch(ctx, n); err != nil {
		s.Logger.Error("failed to dispatch staff notification",
			zap.String("intentId", intent.ID), zap.String("event", string(event)), zap.Error(err))
	}
}
