package redact

import (
	"strings"
)

// FieldClass is the canonical meaning of a connection string key.
type FieldClass int

const (
	UnknownField FieldClass = iota
	ServerField
	DatabaseField
	UserIDField
	PasswordField
)

// String returns the canonical key written back to the output.
func (c FieldClass) String() string {
	switch c {
	case ServerField:
		return "Server"
	case DatabaseField:
		return "Database"
	case UserIDField:
		return "User Id"
	case PasswordField:
		return "Password"
	default:
		return "Unknown"
	}
}

var fieldSynonyms = map[string]FieldClass{
	"data source":     ServerField,
	"server":          ServerField,
	"address":         ServerField,
	"addr":            ServerField,
	"network address": ServerField,
	"initial catalog": DatabaseField,
	"database":        DatabaseField,
	"user id":         UserIDField,
	"uid":             UserIDField,
	"password":        PasswordField,
	"pwd":             PasswordField,
}

// ClassifyKey maps a connection string key to its canonical class.
func ClassifyKey(key string) FieldClass {
	return fieldSynonyms[strings.ToLower(strings.TrimSpace(key))]
}

// Field is one key=value pair found in a connection string.
type Field struct {
	Class FieldClass
	Key   string
	Value string
}

// ParseConnectionString extracts the key=value pairs of s in order.
//
// Keys may not contain '=', ';' or ','. Values run up to the next ';' or ','
// except that a ",<digits>" port suffix stays part of the value. Text that
// does not form a pair is skipped, so malformed input yields fewer fields
// rather than an error.
func ParseConnectionString(s string) []Field {
	var fields []Field

	i := 0
	for i < len(s) {
		keyEnd := i
		for keyEnd < len(s) && !isKeyDelimiter(s[keyEnd]) {
			keyEnd++
		}
		if keyEnd == i || keyEnd == len(s) || s[keyEnd] != '=' {
			// no key here, resume after the delimiter
			i = keyEnd + 1
			continue
		}

		valStart := keyEnd + 1
		valEnd := valStart
		for valEnd < len(s) && !isValueDelimiter(s[valEnd]) {
			valEnd++
		}
		if valEnd == valStart {
			i = valStart
			continue
		}
		valEnd = consumePort(s, valEnd)

		key := strings.TrimSpace(s[i:keyEnd])
		fields = append(fields, Field{
			Class: ClassifyKey(key),
			Key:   key,
			Value: strings.TrimSpace(s[valStart:valEnd]),
		})
		i = valEnd
	}

	return fields
}

func isKeyDelimiter(c byte) bool {
	return c == '=' || c == ';' || c == ','
}

func isValueDelimiter(c byte) bool {
	return c == ';' || c == ','
}

// consumePort extends a value ending at pos over a ",<digits>" suffix.
func consumePort(s string, pos int) int {
	if pos >= len(s) || s[pos] != ',' {
		return pos
	}
	end := pos + 1
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == pos+1 {
		return pos
	}
	return end
}

// IsLocalServer reports whether a server value points at a developer machine.
func IsLocalServer(value string) bool {
	lower := strings.ToLower(value)
	return strings.HasPrefix(lower, "(localdb)") ||
		strings.HasPrefix(lower, `.\sqlexpress`) ||
		strings.Contains(lower, "localhost")
}

// Obfuscator hides the sensitive parts of database connection strings.
// The zero value is ready to use.
type Obfuscator struct {
	// RevealLocalPassword shows the password as-is when the connection
	// string points at a local server. Passwords are hidden otherwise.
	RevealLocalPassword bool
}

// ObfuscateConnectionString hides server, database, user and password values
// of s using the default Obfuscator. When partial is true the first three
// are partially masked instead of hidden. Passwords are always hidden.
func ObfuscateConnectionString(s string, partial bool) string {
	return Obfuscator{}.Obfuscate(s, partial)
}

// obfuscation is the state carried from field to field.
type obfuscation struct {
	out   strings.Builder
	local bool
}

// Obfuscate rebuilds s as "Key=Value;" pairs with sensitive values masked.
// Recognised keys are written with their canonical names. Once a local
// server is seen, the remaining fields are shown unmasked.
func (o Obfuscator) Obfuscate(s string, partial bool) string {
	if len(s) > MaxInputLength {
		return Hidden
	}

	var acc obfuscation
	for _, f := range ParseConnectionString(s) {
		o.fold(&acc, f, partial)
	}
	return acc.out.String()
}

func (o Obfuscator) fold(acc *obfuscation, f Field, partial bool) {
	switch f.Class {
	case ServerField:
		if IsLocalServer(f.Value) {
			acc.local = true
			acc.write(f.Class.String(), f.Value)
			return
		}
		if !partial {
			acc.write(f.Class.String(), Hidden)
			return
		}
		acc.write(f.Class.String(), maskServer(f.Value))
	case DatabaseField, UserIDField:
		switch {
		case acc.local:
			acc.write(f.Class.String(), f.Value)
		case !partial:
			acc.write(f.Class.String(), Hidden)
		default:
			acc.write(f.Class.String(), MaskValue(f.Value))
		}
	case PasswordField:
		if acc.local && o.RevealLocalPassword {
			acc.write(f.Class.String(), f.Value)
			return
		}
		acc.write(f.Class.String(), Hidden)
	default:
		acc.write(f.Key, f.Value)
	}
}

func (acc *obfuscation) write(key, value string) {
	acc.out.WriteString(key)
	acc.out.WriteByte('=')
	acc.out.WriteString(value)
	acc.out.WriteByte(';')
}

// maskServer masks host,port keeping the port and host\instance masking both.
func maskServer(value string) string {
	if host, port, ok := splitPair(value, ","); ok {
		return MaskValue(host) + "," + port
	}
	if host, instance, ok := splitPair(value, `\`); ok {
		return MaskValue(host) + `\` + MaskValue(instance)
	}
	return MaskValue(value)
}

// splitPair splits value around sep only when sep occurs exactly once.
func splitPair(value, sep string) (string, string, bool) {
	if strings.Count(value, sep) != 1 {
		return "", "", false
	}
	before, after, _ := strings.Cut(value, sep)
	return before, after, true
}
