// pkg/adapter/http/matcher_test.go
package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathSet_Matches(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		patterns []string
		want     bool
	}{
		{name: "no patterns", path: "/", patterns: nil, want: false},
		{name: "title page root", path: "/", patterns: []string{"/"}, want: true},
		{name: "empty path is root", path: "", patterns: []string{"/"}, want: true},
		{name: "root does not match children", path: "/api", patterns: []string{"/"}, want: false},
		{name: "exact", path: "/metrics", patterns: []string{"/metrics"}, want: true},
		{name: "trailing slash cleaned", path: "/metrics/", patterns: []string{"/metrics"}, want: true},
		{name: "dot segments cleaned", path: "/internal/./config", patterns: []string{"/internal/config"}, want: true},
		{name: "double slash cleaned", path: "/internal//config", patterns: []string{"/internal/config"}, want: true},
		{name: "internal wildcard", path: "/internal/config", patterns: []string{"/internal/*"}, want: true},
		{name: "trailing wildcard spans segments", path: "/internal/logging/level", patterns: []string{"/internal/*"}, want: true},
		{name: "trailing wildcard matches its base", path: "/internal", patterns: []string{"/internal/*"}, want: true},
		{name: "bare wildcard matches everything", path: "/a/b/c", patterns: []string{"*"}, want: true},
		{name: "segment wildcard", path: "/api/v1/orders/42", patterns: []string{"/api/*/orders/*"}, want: true},
		{name: "segment wildcard wrong length", path: "/api/v1/orders", patterns: []string{"/api/*/orders/*"}, want: false},
		{name: "case sensitive", path: "/Internal/config", patterns: []string{"/internal/*"}, want: false},
		{name: "second pattern matches", path: "/metrics", patterns: []string{"/internal/*", "/metrics"}, want: true},
		{name: "unrelated", path: "/api/orders", patterns: []string{"/internal/*", "/metrics"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compilePaths(tt.patterns).Matches(tt.path))
		})
	}
}

func TestCompilePaths(t *testing.T) {
	set := compilePaths([]string{"/internal/*", "/", "*"})

	assert.Equal(t, pathSet{
		{segments: []string{"internal"}, rest: true},
		{segments: []string{""}},
		{rest: true},
	}, set)
}
