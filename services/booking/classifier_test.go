package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		prior []string
		want  string
		ok    bool
	}{
		{name: "tour", text: "Can I come visit the studio?", want: TypeTour, ok: true},
		{name: "tour beats schedule", text: "I'd like to schedule a tour", want: TypeTour, ok: true},
		{name: "call beats consultation", text: "Can someone call me about a consultation?", want: TypePhoneCall, ok: true},
		{name: "consultation beats estimate", text: "Free consultation and a quote please", want: TypeConsultation, ok: true},
		{name: "estimate", text: "How much for a quote on my roof?", want: TypeEstimate, ok: true},
		{name: "generic", text: "I want to book an appointment", want: TypeAppointment, ok: true},
		{name: "punctuation and case", text: "TOUR!!!", want: TypeTour, ok: true},
		{name: "word boundary", text: "my history of tourism", ok: false},
		{name: "prior messages", text: "yes please, tomorrow works", prior: []string{"Do you offer a walkthrough?"}, want: TypeTour, ok: true},
		{name: "nothing", text: "What are your opening hours?", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Classify(tc.text, tc.prior)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeBookingType(t *testing.T) {
	assert.Equal(t, TypePhoneCall, NormalizeBookingType("Phone Call"))
	assert.Equal(t, TypePhoneCall, NormalizeBookingType("phone-call"))
	assert.Equal(t, TypeFreeConsultation, NormalizeBookingType("Free Consultation"))
	assert.Equal(t, TypeEstimate, NormalizeBookingType("quote"))
	assert.Equal(t, "personal_training", NormalizeBookingType("  Personal   Training "))
	assert.Equal(t, "", NormalizeBookingType("  "))
	assert.True(t, IsInternalType("TOUR"))
	assert.False(t, IsInternalType("haircut"))
}
