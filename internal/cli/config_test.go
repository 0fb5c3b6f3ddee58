package cli

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	if cfg.NTries != 3 {
		t.Errorf("NTries = %d, want 3", cfg.NTries)
	}
	if cfg.Timeout() != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Timeout())
	}
	if cfg.Sleep() != 0 {
		t.Errorf("Sleep = %v, want 0", cfg.Sleep())
	}
	if cfg.CacheTTLHours != 7*24 {
		t.Errorf("CacheTTLHours = %d, want 168", cfg.CacheTTLHours)
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := Config{TimeOut: 5, SleepTime: 0.5}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout())
	}
	if cfg.Sleep() != 500*time.Millisecond {
		t.Errorf("Sleep = %v", cfg.Sleep())
	}
}
