package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		verbose   bool
		wantDebug bool
	}{
		{false, false},
		{true, true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		log := New(tt.verbose, &buf)
		log.Debug("debug line")
		log.Info("info line", zap.String("review_id", "42"))
		_ = log.Sync()

		out := buf.String()
		if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
			t.Errorf("verbose=%v: debug written = %v", tt.verbose, got)
		}
		if !strings.Contains(out, "info line") || !strings.Contains(out, `"review_id": "42"`) {
			t.Errorf("verbose=%v: info line missing or unstructured:\n%s", tt.verbose, out)
		}
	}
}
