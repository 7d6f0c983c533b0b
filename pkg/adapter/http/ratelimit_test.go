package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientLimiter_Allow(t *testing.T) {
	l := newClientLimiter(1, 3)
	defer l.Stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "request %d within burst", i)
	}
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "one token refilled after a second")
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestClientLimiter_Sweep(t *testing.T) {
	l := newClientLimiter(1, 1)
	defer l.Stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(limiterMaxIdle + time.Minute)
	l.Allow("fresh")

	assert.Equal(t, 1, l.sweep(limiterMaxIdle))
	assert.Equal(t, 1, l.size())
}

func TestClientLimiter_StopIsIdempotent(t *testing.T) {
	l := newClientLimiter(1, 1)
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.168.1.100:12345", "192.168.1.100"},
		{"[2001:db8::1]:8080", "2001:db8::1"},
		{"203.0.113.45", "203.0.113.45"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = tt.remote
		assert.Equal(t, tt.want, clientKey(req), tt.remote)
	}
}
