package booking

import (
	"strings"
	"unicode"
)

// classifierRule is one keyword family. Phrases are matched on word
// boundaries against normalized text.
type classifierRule struct {
	bookingType string
	phrases     []string
}

// classifierRules are evaluated in order; the first family that matches wins.
// Generic words such as "schedule" sit in the last family so they never
// shadow a more specific intent.
var classifierRules = []classifierRule{
	{
		bookingType: TypeTour,
		phrases: []string{
			"tour", "tours", "visit", "visiting", "walkthrough", "walk through",
			"see the place", "see the property", "see the space", "see the facility",
			"show me around", "open house", "viewing",
		},
	},
	{
		bookingType: TypePhoneCall,
		phrases: []string{
			"call", "calls", "phone", "phone call", "call me", "call back", "callback",
			"ring me", "talk to someone", "speak to someone", "speak with someone",
			"talk with someone",
		},
	},
	{
		bookingType: TypeConsultation,
		phrases: []string{
			"consult", "consultation", "consultations", "free consultation",
			"assessment", "evaluation",
		},
	},
	{
		bookingType: TypeEstimate,
		phrases: []string{
			"estimate", "estimates", "quote", "quotes", "quotation", "bid",
			"how much would it cost", "pricing",
		},
	},
	{
		bookingType: TypeAppointment,
		phrases: []string{
			"appointment", "appointments", "appt", "book", "booking", "schedule",
			"reserve", "reservation", "slot", "availability", "available",
		},
	},
}

// Classify scans the prior messages plus the current text for booking intent
// and returns the first matching family. ok is false when nothing matches.
func Classify(freeText string, priorMessages []string) (bookingType string, ok bool) {
	parts := make([]string, 0, len(priorMessages)+1)
	parts = append(parts, priorMessages...)
	parts = append(parts, freeText)
	text := " " + normalizeText(strings.Join(parts, " ")) + " "

	for _, rule := range classifierRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(text, " "+phrase+" ") {
				return rule.bookingType, true
			}
		}
	}
	return "", false
}

// normalizeText lowercases, strips punctuation and collapses whitespace.
// Apostrophes are dropped rather than split so "I'd" stays one word.
func normalizeText(s string) string {
	var b strings.Builder
	space := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			space = false
		case !space:
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}
