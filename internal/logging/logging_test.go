package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
		{"negative verbosity stays at warn", -1, zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetupLogger(tt.verbosity, &buf)

			if zerolog.GlobalLevel() != tt.wantLevel {
				t.Errorf("SetupLogger(%d) set level to %v, want %v",
					tt.verbosity, zerolog.GlobalLevel(), tt.wantLevel)
			}
		})
	}
}

func TestGetLogger_TagsComponent(t *testing.T) {
	var buf bytes.Buffer
	SetupLogger(1, &buf)
	defer SetupLogger(0, &bytes.Buffer{})

	logger := GetLogger("importer")
	logger.Info().Msg("hello")

	out := buf.String()
	if !strings.Contains(out, "component=importer") {
		t.Errorf("log output %q does not carry the component field", out)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("log output %q does not contain the message", out)
	}
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	SetupLogger(2, &buf)
	defer SetupLogger(0, &bytes.Buffer{})

	done := LogOperationStart(log.Logger, "resolve")
	done()

	out := buf.String()
	if !strings.Contains(out, "Operation started") || !strings.Contains(out, "Operation completed") {
		t.Errorf("expected start and completion lines, got %q", out)
	}
}
