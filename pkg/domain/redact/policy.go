package redact

import (
	"fmt"
	"strings"

	"github.com/damianoneill/go-titlepage/pkg/domain/config"
)

// Action is what a policy does with a configuration value.
type Action string

const (
	// Passthrough shows the value unchanged
	Passthrough Action = "passthrough"
	// Partial applies MaskValue
	Partial Action = "partial"
	// ConnectionString partially masks a database connection string
	ConnectionString Action = "connection-string"
	// ConnectionStringFull hides every sensitive part of a connection string
	ConnectionStringFull Action = "connection-string-full"
	// Hide replaces the value with Hidden
	Hide Action = "hidden"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case Passthrough, Partial, ConnectionString, ConnectionStringFull, Hide:
		return true
	}
	return false
}

// Rule applies Action to every key starting with Prefix (case-insensitive).
type Rule struct {
	Prefix string `mapstructure:"prefix" json:"prefix"`
	Action Action `mapstructure:"action" json:"action"`
}

// Policy routes flattened configuration values to a redaction action.
// The first matching rule wins and keys no rule matches pass through.
type Policy struct {
	rules      []Rule
	obfuscator Obfuscator
}

var _ config.MaskStrategy = (*Policy)(nil)

// PolicyOption customises a Policy
type PolicyOption func(*Policy)

// WithObfuscator sets the connection string obfuscator used by the policy.
func WithObfuscator(o Obfuscator) PolicyOption {
	return func(p *Policy) {
		p.obfuscator = o
	}
}

// NewPolicy validates rules and returns a policy evaluating them in order.
func NewPolicy(rules []Rule, opts ...PolicyOption) (*Policy, error) {
	p := &Policy{rules: make([]Rule, 0, len(rules))}
	for i, r := range rules {
		if strings.TrimSpace(r.Prefix) == "" {
			return nil, fmt.Errorf("rule %d: empty prefix", i)
		}
		if r.Action == "" {
			r.Action = Partial
		}
		if !r.Action.Valid() {
			return nil, fmt.Errorf("rule %d (%s): unknown action %q", i, r.Prefix, r.Action)
		}
		p.rules = append(p.rules, r)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// DefaultRules is the policy used when none is configured.
func DefaultRules() []Rule {
	return []Rule{
		{Prefix: "LogicConfiguration/SomeIp", Action: Partial},
		{Prefix: "LogicConfiguration/SomeEmail", Action: Partial},
		{Prefix: "LogicConfiguration/SomeArray[1].Id", Action: Partial},
		{Prefix: "DatabaseConnection", Action: ConnectionString},
	}
}

// DefaultPolicy returns a policy built from DefaultRules.
func DefaultPolicy() *Policy {
	p, _ := NewPolicy(DefaultRules())
	return p
}

// Rules returns a copy of the policy's rules.
func (p *Policy) Rules() []Rule {
	return append([]Rule(nil), p.rules...)
}

// ActionFor returns the action of the first rule matching key.
func (p *Policy) ActionFor(key string) Action {
	lower := strings.ToLower(key)
	for _, r := range p.rules {
		if strings.HasPrefix(lower, strings.ToLower(r.Prefix)) {
			return r.Action
		}
	}
	return Passthrough
}

// Redact returns value transformed by the action matching key.
func (p *Policy) Redact(key, value string) (string, Action) {
	action := p.ActionFor(key)
	switch action {
	case Partial:
		return MaskValue(value), action
	case ConnectionString:
		return p.obfuscator.Obfuscate(value, true), action
	case ConnectionStringFull:
		return p.obfuscator.Obfuscate(value, false), action
	case Hide:
		return Hidden, action
	default:
		return value, action
	}
}

// MaskValue implements config.MaskStrategy.
func (p *Policy) MaskValue(key, value string) string {
	masked, _ := p.Redact(key, value)
	return masked
}

// Apply returns entries with every value redacted.
func (p *Policy) Apply(entries []config.FlatEntry) []config.FlatEntry {
	return config.MaskEntries(entries, p)
}
