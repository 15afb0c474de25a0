package booking

import (
	"net"
	"net/url"
	"strings"
)

const maxBookingURLLength = 2048

// URLValidation is the verdict on a candidate external booking URL.
type URLValidation struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// URLValidator checks external booking URLs before a visitor is sent to them.
type URLValidator interface {
	Validate(rawURL string) URLValidation
}

// HTTPSValidator accepts absolute https URLs with a public-looking host.
type HTTPSValidator struct{}

func invalid(reason string) URLValidation {
	return URLValidation{Valid: false, Error: reason}
}

// Validate implements URLValidator.
func (HTTPSValidator) Validate(rawURL string) URLValidation {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return invalid("URL is empty")
	}
	if len(raw) > maxBookingURLLength {
		return invalid("URL is too long")
	}
	if strings.ContainsAny(raw, " \t\r\n") {
		return invalid("URL contains whitespace")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return invalid("URL is malformed")
	}
	if u.Scheme != "https" {
		return invalid("URL must use https")
	}
	if u.User != nil {
		return invalid("URL must not contain credentials")
	}

	host := u.Hostname()
	switch {
	case host == "":
		return invalid("URL host is missing")
	case strings.EqualFold(host, "localhost"):
		return invalid("URL host is not public")
	case net.ParseIP(host) != nil:
		return invalid("URL host must be a domain name")
	case !strings.Contains(host, ".") || strings.HasPrefix(host, ".") || strings.HasSuffix(host, "."):
		return invalid("URL host is malformed")
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return invalid("URL host is malformed")
		}
	}
	return URLValidation{Valid: true}
}
