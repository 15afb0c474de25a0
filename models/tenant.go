package models

// BookingMode is a configured handling preference.
type BookingMode string

const (
	BookingModeUnset    BookingMode = ""
	BookingModeInternal BookingMode = "internal"
	BookingModeExternal BookingMode = "external"
)

// PerTypeOverride replaces the default mode for one booking type.
type PerTypeOverride struct {
	Mode BookingMode `bson:"mode" json:"mode"`
	URL  string      `bson:"url,omitempty" json:"url,omitempty"`
}

// TenantSettings is the booking configuration of one bot, owned by the admin
// dashboard and read-only here.
type TenantSettings struct {
	WorkspaceID string `bson:"workspace_id" json:"workspaceId"`
	BotID       string `bson:"bot_id" json:"botId"`
	TemplateID  string `bson:"template_id" json:"templateId"` // vertical template, e.g. "salon"

	DefaultBookingMode          BookingMode                `bson:"default_booking_mode" json:"defaultBookingMode"`
	ExternalBookingURL          string                     `bson:"external_booking_url" json:"externalBookingUrl"`
	ExternalBookingProviderName string                     `bson:"external_booking_provider_name" json:"externalBookingProviderName"`
	EnableFailsafe              bool                       `bson:"enable_failsafe" json:"enableFailsafe"`
	PerTypeOverrides            map[string]PerTypeOverride `bson:"per_type_overrides" json:"perTypeOverrides"`

	// Staff notification targets.
	NotifyEmail    string `bson:"notify_email,omitempty" json:"notifyEmail,omitempty"`
	NotifyPhone    string `bson:"notify_phone,omitempty" json:"notifyPhone,omitempty"`
	NotifyFCMToken string `bson:"notify_fcm_token,omitempty" json:"-"`
}
