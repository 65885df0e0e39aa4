package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestVerbosity(t *testing.T) {
	tests := []struct {
		count    int
		expected Level
	}{
		{0, Notice},
		{1, Info},
		{2, Debug},
		{5, Debug},
	}
	for _, tt := range tests {
		if got := Verbosity(tt.count); got != tt.expected {
			t.Errorf("Verbosity(%d) = %d, expected %d", tt.count, got, tt.expected)
		}
	}
}

func TestSetLevel_FiltersMessages(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetLevel(Notice)

	logger := New("test")

	SetLevel(Notice)
	logger.Info("hidden")
	logger.Notice("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("info message emitted at notice level")
	}
	if !strings.Contains(buf.String(), "shown") || !strings.Contains(buf.String(), "[test]") {
		t.Errorf("expected notice message with module tag, got %q", buf.String())
	}

	SetLevel(Debug)
	if !Enabled(Debug) {
		t.Error("debug should be enabled after SetLevel(Debug)")
	}
	logger.Debugf("value %d", 42)
	if !strings.Contains(buf.String(), "value 42") {
		t.Errorf("debug message missing, got %q", buf.String())
	}
}
