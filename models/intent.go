package models

import "time"

// IntentStatus is the server-side lifecycle of a quick-book intent.
type IntentStatus string

const (
	IntentStarted      IntentStatus = "started"
	IntentLeadCaptured IntentStatus = "lead_captured"
	IntentClicked      IntentStatus = "clicked"
	IntentDone         IntentStatus = "done"
)

var intentStatusRank = map[IntentStatus]int{
	IntentStarted:      0,
	IntentLeadCaptured: 1,
	IntentClicked:      2,
	IntentDone:         3,
}

// Rank orders statuses so transitions can be checked for monotonicity.
// Unknown statuses rank below started.
func (s IntentStatus) Rank() int {
	r, ok := intentStatusRank[s]
	if !ok {
		return -1
	}
	return r
}

// AtLeast reports whether s has reached other.
func (s IntentStatus) AtLeast(other IntentStatus) bool {
	return s.Rank() >= other.Rank()
}

// Contact is the visitor contact captured during the flow.
type Contact struct {
	Name  string `bson:"name" json:"name"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
}

// HasChannel reports whether at least one way to reach the visitor is present.
func (c Contact) HasChannel() bool {
	return c.Phone != "" || c.Email != ""
}

// BookingIntent tracks one visitor's progress through the quick-book flow.
type BookingIntent struct {
	ID          string `bson:"id" json:"intentId"`
	WorkspaceID string `bson:"workspace_id" json:"workspaceId"`
	BotID       string `bson:"bot_id" json:"botId"`
	SessionID   string `bson:"session_id" json:"sessionId"`

	// Snapshot of the offering at selection time.
	ServiceName   string `bson:"service_name" json:"serviceName"`
	PriceCents    *int64 `bson:"price_cents,omitempty" json:"priceCents,omitempty"`
	DurationLabel string `bson:"duration_label,omitempty" json:"durationLabel,omitempty"`
	BookingType   string `bson:"booking_type" json:"bookingType"`

	Status       IntentStatus       `bson:"status" json:"status"`
	Contact      *Contact           `bson:"contact,omitempty" json:"contact,omitempty"`
	LeadID       string             `bson:"lead_id,omitempty" json:"leadId,omitempty"`
	Resolution   *BookingResolution `bson:"resolution,omitempty" json:"resolution,omitempty"`
	ProviderName string             `bson:"provider_name,omitempty" json:"providerName,omitempty"`

	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
	ClickedAt   *time.Time `bson:"clicked_at,omitempty" json:"clickedAt,omitempty"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
}

// TenantScope identifies the workspace and bot an operation runs under.
type TenantScope struct {
	WorkspaceID string `json:"workspaceId"`
	BotID       string `json:"botId"`
}

// Owns reports whether the intent belongs to the scope.
func (s TenantScope) Owns(in *BookingIntent) bool {
	return in != nil && in.WorkspaceID == s.WorkspaceID && in.BotID == s.BotID
}
