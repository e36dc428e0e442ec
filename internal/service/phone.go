package service

import (
	"regexp"
	"strings"
)

// callingCodes maps ISO region codes to their international calling codes.
// Covers the regions campaigns are run from; unknown regions are rejected
// rather than guessed.
var callingCodes = map[string]string{
	"US": "1",
	"CA": "1",
	"GB": "44",
	"IE": "353",
	"AU": "61",
	"NZ": "64",
	"IN": "91",
	"PK": "92",
	"KE": "254",
	"NG": "234",
	"ZA": "27",
	"DE": "49",
	"FR": "33",
	"ES": "34",
	"IT": "39",
	"NL": "31",
	"BR": "55",
	"MX": "52",
	"AE": "971",
	"SG": "65",
	"PH": "63",
}

// e164Pattern is the E.164 shape: + followed by 8 to 15 digits, first digit
// nonzero.
var e164Pattern = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)

// PhoneResolver normalizes raw contact phone strings into dialable E.164
// numbers. Deterministic, no I/O.
type PhoneResolver struct{}

// NewPhoneResolver creates a new phone number resolver
func NewPhoneResolver() *PhoneResolver {
	return &PhoneResolver{}
}

// Normalize converts raw into E.164 using defaultRegion's calling code when
// the input carries none. Numbers that already start with the region's
// calling code only get the + prefix.
func (r *PhoneResolver) Normalize(raw, defaultRegion string) (string, error) {
	cleaned := clean(raw)
	if cleaned == "" {
		return "", &FormatError{Raw: raw, Reason: "no digits"}
	}

	var candidate string
	if strings.HasPrefix(cleaned, "+") {
		candidate = cleaned
	} else {
		code, ok := callingCodes[strings.ToUpper(defaultRegion)]
		if !ok {
			return "", &FormatError{Raw: raw, Reason: "unknown default region " + defaultRegion}
		}
		if strings.HasPrefix(cleaned, code) && len(cleaned) >= len(code)+8 {
			// Calling code already dialed, e.g. 15551234567 in the US.
			candidate = "+" + cleaned
		} else {
			candidate = "+" + code + cleaned
		}
	}

	if !e164Pattern.MatchString(candidate) {
		return "", &FormatError{Raw: raw, Reason: "not a valid E.164 number"}
	}

	return candidate, nil
}

// clean strips everything except digits and a leading +
func clean(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for i, ch := range raw {
		if ch == '+' && i == 0 {
			b.WriteRune(ch)
			continue
		}
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	s := b.String()
	if s == "+" {
		return ""
	}
	return s
}
