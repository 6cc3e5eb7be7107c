package cache

import (
	"context"
	"testing"
)

func TestHashIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv6", "2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash := hashIP(tt.ip)
			if len(hash) != 16 {
				t.Errorf("hashIP(%q) length = %d, want 16", tt.ip, len(hash))
			}
			if hash != hashIP(tt.ip) {
				t.Errorf("hashIP(%q) is not deterministic", tt.ip)
			}
		})
	}

	if hashIP("10.0.0.1") == hashIP("10.0.0.2") {
		t.Error("different IPs should produce different hashes")
	}
}

func TestCheckIPRateLimit_DisabledLimits(t *testing.T) {
	// A zero rate never reaches Redis, so a nil client is fine.
	c := &Cache{}

	result, err := c.CheckIPRateLimit(context.Background(), "127.0.0.1", 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Allowed {
		t.Fatal("expected request to be allowed")
	}
}
