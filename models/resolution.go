package models

// Handling says where a booking is completed.
type Handling string

const (
	HandlingInternal Handling = "internal"
	HandlingExternal Handling = "external"
)

// Redirect types returned to the widget on click.
const (
	RedirectExternal = "external"
	RedirectDemo     = "demo"
)

// Failsafe reasons recorded when an external configuration cannot be used.
const (
	FailsafeNotConfigured = "not configured"
)

// BookingResolution is the outcome of the booking policy for one booking type.
// The copy stored on an intent is the one actually used and never changes.
type BookingResolution struct {
	Handling          Handling `bson:"handling" json:"handling"`
	ExternalURL       string   `bson:"external_url,omitempty" json:"externalUrl,omitempty"`
	FailsafeActivated bool     `bson:"failsafe_activated" json:"failsafeActivated"`
	FailsafeReason    string   `bson:"failsafe_reason,omitempty" json:"failsafeReason,omitempty"`
}

// IsExternal reports whether the visitor is handed off to a third-party scheduler.
func (r BookingResolution) IsExternal() bool {
	return r.Handling == HandlingExternal
}

// RedirectType maps the handling to what the widget should open.
func (r BookingResolution) RedirectType() string {
	if r.IsExternal() {
		return RedirectExternal
	}
	return RedirectDemo
}
