// Package optimization provides buffer and rate tuning for the live feed.
package optimization

import "runtime"

// Config holds tuned parameters for the WebSocket feed.
type Config struct {
	// Channel buffer sizes
	BroadcastChannelBuffer int
	ClientSendBuffer       int

	// Rate limiting
	MaxMessagesPerSecond int
	MaxClients           int
}

// DefaultConfig returns sensible defaults for production.
func DefaultConfig() *Config {
	return &Config{
		BroadcastChannelBuffer: 256, // absorbs 1h/s bursts
		ClientSendBuffer:       64,

		MaxMessagesPerSecond: 20, // per client
		MaxClients:           runtime.NumCPU() * 32,
	}
}

// StressTestConfig returns aggressive settings for stress testing.
func StressTestConfig() *Config {
	return &Config{
		BroadcastChannelBuffer: 1024,
		ClientSendBuffer:       256,

		MaxMessagesPerSecond: 200,
		MaxClients:           runtime.NumCPU() * 128,
	}
}

// LowResourceConfig returns minimal settings for development.
func LowResourceConfig() *Config {
	return &Config{
		BroadcastChannelBuffer: 16,
		ClientSendBuffer:       8,

		MaxMessagesPerSecond: 5,
		MaxClients:           8,
	}
}

// ForProfile maps a profile name to its settings. Unknown names get the defaults.
func ForProfile(name string) *Config {
	switch name {
	case "stress":
		return StressTestConfig()
	case "low":
		return LowResourceConfig()
	default:
		return DefaultConfig()
	}
}
