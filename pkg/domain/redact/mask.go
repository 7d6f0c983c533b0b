// Package redact hides sensitive configuration values before they are shown
// to a human. All functions are pure and safe for concurrent use.
package redact

import (
	"strings"
	"unicode/utf8"
)

const (
	// Hidden replaces values that cannot be shown at all
	Hidden = "[hidden]"

	// MaxInputLength bounds the work done for a single value. Longer values
	// are replaced with Hidden without being inspected.
	MaxInputLength = 64 * 1024

	// minMaskableLength is the shortest value that is partially revealed
	minMaskableLength = 6

	band        = "*****"
	maxFragment = 3

	providerPlaceholder = "***"
)

// wellKnownProviders are public mail hosts that are replaced outright
// instead of being partially masked.
var wellKnownProviders = map[string]struct{}{
	"OUTLOOK": {},
	"YANDEX":  {},
	"HOTMAIL": {},
	"ICLOUD":  {},
	"GMAIL":   {},
}

// MaskValue partially hides value, keeping up to three characters on each
// side of a fixed five asterisk band. E-mail addresses keep their top level
// domain and IPv4 addresses keep fragments of the outer octets.
//
//	MaskValue("SomeServer")         // "So*****er"
//	MaskValue("john.doe@gmail.com") // "j*****oe@***.com"
//	MaskValue("192.168.10.234")     // "19*.*.*.*34"
func MaskValue(value string) string {
	if len(value) > MaxInputLength {
		return Hidden
	}
	if utf8.RuneCountInString(value) < minMaskableLength {
		return Hidden
	}

	if strings.Count(value, "@") == 1 && strings.Contains(value, ".") {
		if m, ok := matchEmail(value); ok {
			host := providerPlaceholder
			if _, known := wellKnownProviders[strings.ToUpper(m.Host)]; !known {
				host = MaskValue(m.Host)
			}
			return MaskValue(m.Local) + "@" + host + "." + m.TLD
		}
	}

	if m, ok := matchIPv4(value); ok {
		return maskLeadingOctet(m[0]) + ".*.*." + maskTrailingOctet(m[3])
	}

	return maskMiddle(value)
}

// maskMiddle replaces a bit more than half of value with the asterisk band.
func maskMiddle(value string) string {
	runes := []rune(value)
	n := len(runes)

	replaceable := n/2 + 1
	rest := n - replaceable
	last := min(maxFragment, rest/2+rest%2)
	first := min(maxFragment, rest-last)

	return string(runes[:first]) + band + string(runes[n-last:])
}

func maskLeadingOctet(octet string) string {
	if len(octet) < 2 {
		return "*"
	}
	return octet[:len(octet)-1] + "*"
}

func maskTrailingOctet(octet string) string {
	if len(octet) < 2 {
		return "*"
	}
	return "*" + octet[1:]
}
