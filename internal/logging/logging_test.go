package logging_test

import (
	"testing"

	"github.com/kiwari-pos/storefront/internal/logging"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development", ""} {
		logger, err := logging.New(env)
		if err != nil {
			t.Fatalf("New(%q): %v", env, err)
		}
		if logger == nil {
			t.Fatalf("New(%q): nil logger", env)
		}
	}
}

func TestQuietDropsInfo(t *testing.T) {
	logger := logging.Quiet()
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled")
	}
}
