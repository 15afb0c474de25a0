package leadRepo

import (
	"context"

	"quickbook/models"
)

// LeadRepository is the contact store fed by the quick-book flow.
type LeadRepository interface {
	// Upsert saves the lead for lead.IntentID and returns its id. Saving the
	// same intent twice updates the contact and keeps the original id.
	Upsert(ctx context.Context, lead models.Lead) (string, error)
}
