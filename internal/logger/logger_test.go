package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		debug bool
		want  zerolog.Level
	}{
		{"warn", false, zerolog.WarnLevel},
		{" ERROR ", false, zerolog.ErrorLevel},
		{"", false, zerolog.InfoLevel},
		{"loud", false, zerolog.InfoLevel},
		{"error", true, zerolog.DebugLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in, tt.debug); got != tt.want {
			t.Errorf("ParseLevel(%q, %v) = %v, want %v", tt.in, tt.debug, got, tt.want)
		}
	}
}
