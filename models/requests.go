package models

// StartIntentRequest is the body of the start call.
type StartIntentRequest struct {
	SessionID     string `json:"sessionId" binding:"required,max=128"`
	ServiceName   string `json:"serviceName" binding:"required,max=200"`
	PriceCents    *int64 `json:"priceCents,omitempty" binding:"omitempty,min=0"`
	DurationLabel string `json:"durationLabel,omitempty" binding:"max=64"`
	BookingType   string `json:"bookingType,omitempty" binding:"max=64"`
}

// AttachContactRequest is the body of the attach-contact call. Presence of a
// name and a channel is checked by the service so it can answer with a
// specific rejection code.
type AttachContactRequest struct {
	Name  string `json:"name" binding:"max=200"`
	Phone string `json:"phone,omitempty" binding:"max=32"`
	Email string `json:"email,omitempty" binding:"omitempty,max=254,email"`
}
