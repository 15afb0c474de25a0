package models

// ChatBookingRequest is a chat turn checked for booking intent.
type ChatBookingRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

// ChatBookingResponse reports the detected booking type, if any.
type ChatBookingResponse struct {
	BookingType string `json:"bookingType,omitempty"`
	Detected    bool   `json:"detected"`
}

// ChatContext is the rolling history kept per chat session.
type ChatContext struct {
	Messages []string `json:"messages"`
}
