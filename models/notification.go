package models

// NotificationEvent names what happened to an intent.
type NotificationEvent string

const (
	EventLeadCaptured   NotificationEvent = "lead_captured"
	EventBookingClicked NotificationEvent = "booking_clicked"
)

// Notification channels.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelPush  = "push"
)

// IntentNotification is the queued payload for staff alerts. It carries a
// snapshot so delivery never has to re-read the intent.
type IntentNotification struct {
	Event        NotificationEvent  `json:"event"`
	IntentID     string             `json:"intentId"`
	WorkspaceID  string             `json:"workspaceId"`
	BotID        string             `json:"botId"`
	ServiceName  string             `json:"serviceName"`
	PriceCents   *int64             `json:"priceCents,omitempty"`
	Contact      *Contact           `json:"contact,omitempty"`
	Resolution   *BookingResolution `json:"resolution,omitempty"`
	ProviderName string             `json:"providerName,omitempty"`

	// Recipients, copied from tenant settings at dispatch time.
	NotifyEmail    string `json:"notifyEmail,omitempty"`
	NotifyPhone    string `json:"notifyPhone,omitempty"`
	NotifyFCMToken string `json:"notifyFcmToken,omitempty"`
	// AlertFailsafe asks staff to fix their external booking configuration.
	AlertFailsafe bool `json:"alertFailsafe,omitempty"`
}

// Message is a rendered notification for one channel.
type Message struct {
	To      string            `json:"to"`
	Subject string            `json:"subject,omitempty"`
	Body    string            `json:"body"`
	Data    map[string]string `json:"data,omitempty"`
}
