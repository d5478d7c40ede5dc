package utils

import (
	"testing"
	"time"
)

func TestSizeLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"zero", 0, "0 B"},
		{"bytes", 512, "512 B"},
		{"exact kilobyte", 1024, "1.0 KB"},
		{"kilobytes", 5 * 1024, "5.0 KB"},
		{"fractional kilobytes", 1536, "1.5 KB"},
		{"megabytes", 2.5 * 1024 * 1024, "2.5 MB"},
		{"gigabytes", 3 * 1024 * 1024 * 1024, "3.0 GB"},
		{"negative clamps", -42, "0 B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SizeLabel(tt.input)
			if result != tt.expected {
				t.Errorf("SizeLabel(%f) = %s; want %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRateLabel(t *testing.T) {
	if got := RateLabel(5 * 1024); got != "5.0 KB/s" {
		t.Errorf("RateLabel(5120) = %s; want 5.0 KB/s", got)
	}
}

func TestShortTimeLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Duration
		expected string
	}{
		{"zero", 0, "0:00:00"},
		{"seconds", 42 * time.Second, "0:00:42"},
		{"minutes", 5*time.Minute + 3*time.Second, "0:05:03"},
		{"hours", 2*time.Hour + 15*time.Minute, "2:15:00"},
		{"days", 26*time.Hour + 30*time.Minute, "1d 2:30:00"},
		{"negative clamps", -time.Minute, "0:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ShortTimeLabel(tt.input)
			if result != tt.expected {
				t.Errorf("ShortTimeLabel(%v) = %s; want %s", tt.input, result, tt.expected)
			}
		})
	}
}
