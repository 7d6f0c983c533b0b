package redact

import (
	"strconv"
	"strings"
)

// matchIPv4 reports whether the whole of value is a dotted quad and returns
// its octets as written.
func matchIPv4(value string) ([4]string, bool) {
	var octets [4]string

	parts := strings.Split(value, ".")
	if len(parts) != len(octets) {
		return octets, false
	}
	for i, part := range parts {
		if !isOctet(part) {
			return octets, false
		}
		octets[i] = part
	}
	return octets, true
}

func isOctet(s string) bool {
	if len(s) == 0 || len(s) > 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	n, err := strconv.Atoi(s)
	return err == nil && n <= 255
}
