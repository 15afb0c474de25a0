package booking

import (
	"sort"

	"quickbook/models"
)

// ResolutionContext is everything the booking policy looks at.
type ResolutionContext struct {
	BookingType         string
	Settings            models.TenantSettings
	PerTypeOverrides    map[string]models.PerTypeOverride
	TemplateDefaultMode models.BookingMode

	// Template is the tenant's current template, when known. Overrides for
	// appointment types it no longer offers are ignored.
	Template *TemplateDetails
}

// PolicyResolver decides internal vs external handling. It is pure: the same
// context always yields the same resolution and it never fails.
type PolicyResolver struct {
	Validator URLValidator
}

// NewPolicyResolver returns a resolver using the given URL validator, or the
// https validator when nil.
func NewPolicyResolver(v URLValidator) *PolicyResolver {
	if v == nil {
		v = HTTPSValidator{}
	}
	return &PolicyResolver{Validator: v}
}

// NewResolutionContext assembles a context from stored tenant settings.
func NewResolutionContext(bookingType string, settings *models.TenantSettings) ResolutionContext {
	rc := ResolutionContext{BookingType: bookingType}
	if settings == nil {
		return rc
	}
	rc.Settings = *settings
	rc.PerTypeOverrides = settings.PerTypeOverrides
	if tmpl, ok := GetTemplate(settings.TemplateID); ok {
		rc.Template = &tmpl
		rc.TemplateDefaultMode = tmpl.DefaultMode
	}
	return rc
}

func internalResolution() models.BookingResolution {
	return models.BookingResolution{Handling: models.HandlingInternal}
}

func failsafe(reason string) models.BookingResolution {
	return models.BookingResolution{
		Handling:          models.HandlingInternal,
		FailsafeActivated: true,
		FailsafeReason:    reason,
	}
}

// Resolve applies, in order: fixed internal types, a per-type override, the
// tenant (or template) default mode, and finally internal.
func (p *PolicyResolver) Resolve(rc ResolutionContext) models.BookingResolution {
	bookingType := NormalizeBookingType(rc.BookingType)

	// 1. Scheduling-only types stay in the conversation.
	if internalTypes[bookingType] {
		return internalResolution()
	}

	// 2. Per-type override. An invalid override URL falls through.
	if res, ok := p.applyOverride(bookingType, rc); ok {
		return res
	}

	// 3. Tenant default, else template default.
	mode := rc.Settings.DefaultBookingMode
	if mode == models.BookingModeUnset {
		mode = rc.TemplateDefaultMode
	}
	switch mode {
	case models.BookingModeInternal:
		return internalResolution()
	case models.BookingModeExternal:
		url := rc.Settings.ExternalBookingURL
		if url == "" {
			return failsafe(models.FailsafeNotConfigured)
		}
		if v := p.Validator.Validate(url); !v.Valid {
			return failsafe(v.Error)
		}
		return models.BookingResolution{Handling: models.HandlingExternal, ExternalURL: url}
	}

	// 4. No mode signal at all.
	return internalResolution()
}

func (p *PolicyResolver) applyOverride(bookingType string, rc ResolutionContext) (models.BookingResolution, bool) {
	if bookingType == "" || len(rc.PerTypeOverrides) == 0 {
		return models.BookingResolution{}, false
	}
	override, ok := lookupOverride(rc.PerTypeOverrides, bookingType)
	if !ok {
		return models.BookingResolution{}, false
	}
	if rc.Template != nil && !rc.Template.HasAppointmentType(bookingType) {
		return models.BookingResolution{}, false
	}

	switch override.Mode {
	case models.BookingModeInternal:
		return internalResolution(), true
	case models.BookingModeExternal:
		if override.URL != "" && p.Validator.Validate(override.URL).Valid {
			return models.BookingResolution{Handling: models.HandlingExternal, ExternalURL: override.URL}, true
		}
	}
	return models.BookingResolution{}, false
}

// lookupOverride matches override keys after normalization, so an admin
// saving "Haircut" still matches the "haircut" type.
func lookupOverride(overrides map[string]models.PerTypeOverride, bookingType string) (models.PerTypeOverride, bool) {
	if o, ok := overrides[bookingType]; ok {
		return o, true
	}
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if NormalizeBookingType(key) == bookingType {
			return overrides[key], true
		}
	}
	return models.PerTypeOverride{}, false
}
