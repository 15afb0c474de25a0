package booking

import "fmt"

// IntentError is a rejection the visitor can correct. Code is stable and
// machine-readable; handlers map it to an HTTP status.
type IntentError struct {
	Code    string
	Message string
}

func (e *IntentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Rejection codes.
const (
	CodeIntentNotFound     = "INTENT_NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeContactRequired    = "CONTACT_REQUIRED"
	CodeContactNotCaptured = "CONTACT_NOT_CAPTURED"
	CodeAlreadyBooked      = "INTENT_ALREADY_BOOKED"
	CodeNotClicked         = "INTENT_NOT_CLICKED"
)

var (
	ErrIntentNotFound  = &IntentError{Code: CodeIntentNotFound, Message: "intent not found"}
	ErrContactRequired = &IntentError{
		Code:    CodeContactRequired,
		Message: "a name and a phone number or email are required",
	}
	ErrContactNotCaptured = &IntentError{
		Code:    CodeContactNotCaptured,
		Message: "contact details must be captured before booking",
	}
	ErrAlreadyBooked = &IntentError{Code: CodeAlreadyBooked, Message: "intent has already been booked"}
	ErrNotClicked    = &IntentError{Code: CodeNotClicked, Message: "intent has not been booked yet"}
)

// NewValidationError reports a malformed request field.
func NewValidationError(msg string) error {
	return &IntentError{Code: CodeValidation, Message: msg}
}
