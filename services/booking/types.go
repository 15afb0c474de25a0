package booking

import (
	"strings"
	"unicode"
)

// Booking type tokens.
const (
	TypeTour             = "tour"
	TypePhoneCall        = "phone_call"
	TypeConsultation     = "consultation"
	TypeDiscoveryCall    = "discovery_call"
	TypeInfoCall         = "info_call"
	TypeEstimate         = "estimate"
	TypeInquiry          = "inquiry"
	TypeCallback         = "callback"
	TypeFreeConsultation = "free_consultation"
	TypeAppointment      = "appointment"
)

// internalTypes never leave the conversation: no payment, scheduling only.
var internalTypes = map[string]bool{
	TypePhoneCall:        true,
	TypeTour:             true,
	TypeConsultation:     true,
	TypeDiscoveryCall:    true,
	TypeInfoCall:         true,
	TypeEstimate:         true,
	TypeInquiry:          true,
	TypeCallback:         true,
	TypeFreeConsultation: true,
}

// IsInternalType reports whether the normalized type is always handled in-app.
func IsInternalType(bookingType string) bool {
	return internalTypes[NormalizeBookingType(bookingType)]
}

// typeAliases maps normalized selections that do not match a token verbatim.
var typeAliases = map[string]string{
	"call":               TypePhoneCall,
	"phone":              TypePhoneCall,
	"phone_consultation": TypeConsultation,
	"call_back":          TypeCallback,
	"request_callback":   TypeCallback,
	"consult":            TypeConsultation,
	"free_consult":       TypeFreeConsultation,
	"discovery":          TypeDiscoveryCall,
	"information_call":   TypeInfoCall,
	"quote":              TypeEstimate,
	"free_estimate":      TypeEstimate,
	"free_quote":         TypeEstimate,
	"property_tour":      TypeTour,
	"visit":              TypeTour,
	"site_visit":         TypeTour,
	"general_inquiry":    TypeInquiry,
	"enquiry":            TypeInquiry,
	"book_appointment":   TypeAppointment,
	"booking":            TypeAppointment,
}

// NormalizeBookingType turns an explicit selection ("Free Consultation",
// "phone-call", "TOUR") into a booking type token. Unknown selections are
// returned in normalized snake_case so template ids still match.
func NormalizeBookingType(selection string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(selection)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	token := strings.TrimSuffix(b.String(), "_")
	if alias, ok := typeAliases[token]; ok {
		return alias
	}
	return token
}
