package optimization

import "testing"

func TestForProfile(t *testing.T) {
	tests := []struct {
		name       string
		wantBuffer int
	}{
		{"default", 256},
		{"", 256},
		{"stress", 1024},
		{"low", 16},
	}
	for _, tc := range tests {
		if got := ForProfile(tc.name).BroadcastChannelBuffer; got != tc.wantBuffer {
			t.Errorf("profile %q: expected broadcast buffer %d, got %d", tc.name, tc.wantBuffer, got)
		}
	}
}

func TestProfilesArePositive(t *testing.T) {
	for _, cfg := range []*Config{DefaultConfig(), StressTestConfig(), LowResourceConfig()} {
		if cfg.ClientSendBuffer <= 0 || cfg.MaxMessagesPerSecond <= 0 || cfg.MaxClients <= 0 {
			t.Errorf("profile has non-positive limits: %+v", cfg)
		}
	}
}
