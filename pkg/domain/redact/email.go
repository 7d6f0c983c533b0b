package redact

import (
	"net/mail"
	"strings"
)

// emailMatch is a mailbox split into the parts that are masked separately.
type emailMatch struct {
	Local string
	// Host is the domain without its last label
	Host string
	TLD  string
}

// matchEmail parses value as a single mailbox address.
func matchEmail(value string) (emailMatch, bool) {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return emailMatch{}, false
	}

	at := strings.LastIndex(addr.Address, "@")
	if at < 0 {
		return emailMatch{}, false
	}
	local, domain := addr.Address[:at], addr.Address[at+1:]

	labels := strings.Split(domain, ".")
	return emailMatch{
		Local: local,
		Host:  strings.Join(labels[:len(labels)-1], "."),
		TLD:   labels[len(labels)-1],
	}, true
}
