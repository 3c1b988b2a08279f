package telephony

import (
	"fmt"
	"strings"

	"github.com/Domenick1991/quickreserve/internal/domain"
)

// Digits drops everything that is not 0-9.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToE164 converts a locally written number to +<country><subscriber>. A number that
// already starts with '+' is kept as international; otherwise a leading trunk prefix
// is replaced by countryCode, or countryCode is prepended when there is none.
func ToE164(raw, countryCode, trunkPrefix string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	digits := Digits(trimmed)
	if digits == "" {
		return "", fmt.Errorf("%w: phone %q has no digits", domain.ErrPrecondition, raw)
	}

	if strings.HasPrefix(trimmed, "+") {
		return "+" + digits, nil
	}
	if trunkPrefix != "" && strings.HasPrefix(digits, trunkPrefix) {
		digits = strings.TrimPrefix(digits, trunkPrefix)
		if digits == "" {
			return "", fmt.Errorf("%w: phone %q has no subscriber number", domain.ErrPrecondition, raw)
		}
	}
	return "+" + countryCode + digits, nil
}

// DigitGroups splits a phone number the way it is read aloud: 3/4/4 for eleven
// digits, 3/3/4 for ten, a single group otherwise.
func DigitGroups(phone string) []string {
	d := Digits(phone)
	switch len(d) {
	case 11:
		return []string{d[:3], d[3:7], d[7:]}
	case 10:
		return []string{d[:3], d[3:6], d[6:]}
	case 0:
		return nil
	default:
		return []string{d}
	}
}

// SpokenPhone renders phone for text-to-speech: digits separated by spaces, groups by ", ".
func SpokenPhone(phone string) string {
	groups := DigitGroups(phone)
	spoken := make([]string, 0, len(groups))
	for _, g := range groups {
		spoken = append(spoken, strings.Join(strings.Split(g, ""), " "))
	}
	return strings.Join(spoken, ", ")
}
