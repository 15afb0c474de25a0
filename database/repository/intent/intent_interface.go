package intentRepo

import (
	"context"
	"errors"
	"time"

	"quickbook/models"
)

var (
	// ErrIntentNotFound is returned when no intent has the given id.
	ErrIntentNotFound = errors.New("intent not found")
	// ErrStaleTransition is returned when a conditional update finds the
	// intent in a status that does not allow the transition.
	ErrStaleTransition = errors.New("intent status does not allow this transition")
)

// IntentRepository persists quick-book intents. Every mutating method is a
// conditional update on the current status, so transitions stay monotonic
// even when a client replays a request.
type IntentRepository interface {
	Create(ctx context.Context, intent *models.BookingIntent) error
	GetByID(ctx context.Context, intentID string) (*models.BookingIntent, error)
	// AttachContact applies while the intent is started or lead_captured.
	AttachContact(ctx context.Context, intentID string, contact models.Contact, leadID string) (*models.BookingIntent, error)
	// RecordClick applies only to a lead_captured intent with no resolution yet.
	RecordClick(ctx context.Context, intentID string, resolution models.BookingResolution, providerName string) (*models.BookingIntent, error)
	// MarkDone applies only to a clicked intent.
	MarkDone(ctx context.Context, intentID string) (*models.BookingIntent, error)
	ListByWorkspace(ctx context.Context, workspaceID string, since time.Time, limit, offset int) ([]models.BookingIntent, error)
}
