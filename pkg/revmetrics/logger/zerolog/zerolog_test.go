package zerolog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lumoshot/revmetrics/pkg/revmetrics"
)

func TestLogger_WritesLevelsAndFields(t *testing.T) {
	var output bytes.Buffer
	logger := NewLogger(zerolog.New(&output))

	logger.Debug("debug message")
	logger.Info("info message", revmetrics.Field{Key: "metric", Value: "mrr"})
	logger.Warn("warn message")
	logger.Error("error message")

	logged := output.String()
	for _, want := range []string{"debug message", "info message", "warn message", "error message", `"metric":"mrr"`} {
		if !strings.Contains(logged, want) {
			t.Errorf("expected log output to contain %q, got: %s", want, logged)
		}
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	var output bytes.Buffer
	logger := NewLogger(zerolog.New(&output).Level(zerolog.WarnLevel))

	logger.Debug("hidden")
	logger.Warn("visible")

	logged := output.String()
	if strings.Contains(logged, "hidden") {
		t.Error("debug message should be suppressed at warn level")
	}
	if !strings.Contains(logged, "visible") {
		t.Error("warn message should be written at warn level")
	}
}
