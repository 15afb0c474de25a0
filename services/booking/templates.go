package booking

import "quickbook/models"

// TemplateDetails is what a vertical template contributes to booking policy.
type TemplateDetails struct {
	ID               string             `json:"id"`
	Vertical         string             `json:"vertical"`
	DefaultMode      models.BookingMode `json:"defaultMode"`
	AppointmentTypes []string           `json:"appointmentTypes"`
}

// Templates with paid, provider-specific appointments usually hand off to the
// business's own scheduler; lead-driven verticals keep everything in-app.
var templatesMap = map[string]TemplateDetails{
	"salon": {
		ID:               "salon",
		Vertical:         "Beauty & Personal Care",
		DefaultMode:      models.BookingModeExternal,
		AppointmentTypes: []string{"haircut", "color", "blowout", "manicure", "pedicure", TypeConsultation},
	},
	"medspa": {
		ID:               "medspa",
		Vertical:         "Medical Spa",
		DefaultMode:      models.BookingModeExternal,
		AppointmentTypes: []string{"botox", "filler", "facial", "laser", TypeFreeConsultation},
	},
	"dental": {
		ID:               "dental",
		Vertical:         "Dental",
		DefaultMode:      models.BookingModeExternal,
		AppointmentTypes: []string{"cleaning", "checkup", "whitening", TypeConsultation},
	},
	"fitness": {
		ID:               "fitness",
		Vertical:         "Fitness",
		DefaultMode:      models.BookingModeExternal,
		AppointmentTypes: []string{"class", "personal_training", TypeTour, TypeFreeConsultation},
	},
	"real_estate": {
		ID:               "real_estate",
		Vertical:         "Real Estate",
		DefaultMode:      models.BookingModeInternal,
		AppointmentTypes: []string{TypeTour, TypePhoneCall, TypeConsultation, TypeInquiry},
	},
	"home_services": {
		ID:               "home_services",
		Vertical:         "Home Services",
		DefaultMode:      models.BookingModeInternal,
		AppointmentTypes: []string{TypeEstimate, TypeCallback, TypeInquiry, TypeAppointment},
	},
	"professional_services": {
		ID:               "professional_services",
		Vertical:         "Professional Services",
		DefaultMode:      models.BookingModeInternal,
		AppointmentTypes: []string{TypeDiscoveryCall, TypeInfoCall, TypeConsultation, TypeAppointment},
	},
}

// GetTemplate returns a copy of a template. ok is false for unknown ids.
func GetTemplate(templateID string) (TemplateDetails, bool) {
	t, ok := templatesMap[templateID]
	if !ok {
		return TemplateDetails{}, false
	}
	types := make([]string, len(t.AppointmentTypes))
	copy(types, t.AppointmentTypes)
	t.AppointmentTypes = types
	return t, true
}

// HasAppointmentType reports whether the template still offers bookingType.
func (t TemplateDetails) HasAppointmentType(bookingType string) bool {
	for _, id := range t.AppointmentTypes {
		if NormalizeBookingType(id) == bookingType {
			return true
		}
	}
	return false
}
