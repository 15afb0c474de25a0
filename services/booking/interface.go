package booking

import (
	"context"
	"fmt"
	"time"

	intentRepo "quickbook/database/repository/intent"
	leadRepo "quickbook/database/repository/lead"
	tenantRepo "quickbook/database/repository/tenant"
	"quickbook/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IntentService drives the server side of the quick-book flow.
type IntentService interface {
	StartIntent(ctx context.Context, scope models.TenantScope, input StartIntentInput) (*models.BookingIntent, error)
	AttachContact(ctx context.Context, scope models.TenantScope, intentID string, contact models.Contact) (*AttachContactResult, error)
	Click(ctx context.Context, scope models.TenantScope, intentID string) (*ClickResult, error)
	Complete(ctx context.Context, scope models.TenantScope, intentID string) (*models.BookingIntent, error)
	GetIntent(ctx context.Context, scope models.TenantScope, intentID string) (*models.BookingIntent, error)
	ExportIntents(ctx context.Context, workspaceID string, since time.Time, limit, offset int) ([]models.BookingIntent, error)
}

// Dispatcher hands staff notifications to the delivery subsystem. It must
// not block on delivery itself.
type Dispatcher interface {
	Dispatch(ctx context.Context, n models.IntentNotification) error
}

// HistoryReader returns the chat messages seen so far in a session.
type HistoryReader interface {
	Get(ctx context.Context, scope models.TenantScope, sessionID string) (*models.ChatContext, error)
}

// StartIntentInput is the service selection that opens an intent.
type StartIntentInput struct {
	SessionID     string
	ServiceName   string
	PriceCents    *int64
	DurationLabel string
	// BookingType is the explicit appointment type of the selected button,
	// if the widget knows it.
	BookingType string
}

// AttachContactResult is returned once the contact is stored.
type AttachContactResult struct {
	LeadID string
	Intent *models.BookingIntent
}

// ClickResult is what the widget needs to finish the handoff.
type ClickResult struct {
	Handling     models.Handling
	URL          string
	ProviderName string
	RedirectType string
	Resolution   models.BookingResolution
	// Replayed is true when the resolution was recorded by an earlier click.
	Replayed bool
}

// DefaultIntentService implements IntentService.
type DefaultIntentService struct {
	Intents    intentRepo.IntentRepository
	Leads      leadRepo.LeadRepository
	Settings   tenantRepo.SettingsRepository
	Resolver   *PolicyResolver
	Dispatcher Dispatcher
	History    HistoryReader
	Logger     *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewDefaultIntentService wires the intent service. The dispatcher may be nil,
// in which case no staff notifications are sent. Without a history reader the
// booking type is inferred from the selection alone.
func NewDefaultIntentService(
	intents intentRepo.IntentRepository,
	leads leadRepo.LeadRepository,
	settings tenantRepo.SettingsRepository,
	resolver *PolicyResolver,
	dispatcher Dispatcher,
	history HistoryReader,
	logger *zap.Logger,
) (*DefaultIntentService, error) {
	if intents == nil || leads == nil || settings == nil {
		return nil, fmt.Errorf("intent service initialization error: intent, lead or settings repository is nil")
	}
	if resolver == nil {
		resolver = NewPolicyResolver(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultIntentService{
		Intents:    intents,
		Leads:      leads,
		Settings:   settings,
		Resolver:   resolver,
		Dispatcher: dispatcher,
		History:    history,
		Logger:     logger,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}, nil
}
