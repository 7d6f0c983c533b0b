package config

import (
	"net/http"
	"strings"
)

// MaskStrategy determines how sensitive data is masked
type MaskStrategy interface {
	// MaskValue masks potentially sensitive values
	// key is the flattened, source-annotated key (e.g. "database/password (ENV)")
	// value is the raw config value to potentially mask
	// Returns the masked value or original value if masking not needed
	MaskValue(key string, value string) string
}

// DefaultMaskStrategy hides values whose key contains a sensitive word
type DefaultMaskStrategy struct {
	// SensitiveKeys contains key patterns that should be masked (e.g. "password", "secret", "key")
	SensitiveKeys []string
	// MaskPattern is the string used to mask sensitive values (e.g. "[hidden]")
	MaskPattern string
}

// NewDefaultMaskStrategy returns the strategy used when none is supplied
func NewDefaultMaskStrategy() *DefaultMaskStrategy {
	return &DefaultMaskStrategy{
		SensitiveKeys: []string{"password", "secret", "key", "token", "credential", "connection"},
		MaskPattern:   "[hidden]",
	}
}

// MaskValue implements MaskStrategy
func (s *DefaultMaskStrategy) MaskValue(key string, value string) string {
	pattern := s.MaskPattern
	if pattern == "" {
		pattern = "[hidden]"
	}
	key = UndecoratedKey(key)
	for _, sensitive := range s.SensitiveKeys {
		if containsInsensitive(key, sensitive) {
			return pattern
		}
	}
	return value
}

// containsInsensitive checks if str contains substr case-insensitively
func containsInsensitive(str, substr string) bool {
	str, substr = strings.ToLower(str), strings.ToLower(substr)
	return strings.Contains(str, substr)
}

// MaskEntries returns a copy of entries with every value passed through strategy.
func MaskEntries(entries []FlatEntry, strategy MaskStrategy) []FlatEntry {
	masked := make([]FlatEntry, len(entries))
	for i, entry := range entries {
		masked[i] = FlatEntry{Key: entry.Key, Value: strategy.MaskValue(entry.Key, entry.Value)}
	}
	return masked
}

// MaskedStore is a store that can expose its flattened, masked configuration
type MaskedStore interface {
	Store
	Tree

	// GetMaskedEntries flattens the configuration through whitelist and masks
	// each value with strategy. A nil strategy falls back to DefaultMaskStrategy.
	GetMaskedEntries(whitelist Whitelist, strategy MaskStrategy) ([]FlatEntry, error)

	// GetConfigHandler serves GetMaskedEntries as JSON
	GetConfigHandler(whitelist Whitelist, strategy MaskStrategy) http.Handler
}
