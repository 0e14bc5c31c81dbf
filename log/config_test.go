package log

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func TestConfig_Options_SetFields(t *testing.T) {
	c := apply(config{},
		WithLevel(LevelWarn),
		WithFormat(FormatText),
		WithCaller(true),
		WithPretty(false),
	)

	if c.level != LevelWarn {
		t.Errorf("expected level warn, got %v", c.level)
	}
	if c.format != FormatText {
		t.Errorf("expected format text, got %v", c.format)
	}
	if !c.caller {
		t.Error("expected caller enabled")
	}
	if c.pretty {
		t.Error("expected pretty disabled")
	}
	if c.mutex == nil {
		t.Error("expected options to allocate a mutex")
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelTrace, "trace"},
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LevelInfo + 2, "info+2"},
		{LevelError + 4, "error+4"},
		{LevelTrace - 1, "trace-1"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"info+2", LevelInfo + 2},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for name := range Formats() {
		if got := ParseFormat(strings.ToUpper(name)).String(); got != name {
			t.Errorf("expected %q, got %q", name, got)
		}
	}

	if got := ParseFormat("yaml"); got != DefaultFormat {
		t.Errorf("expected default format, got %v", got)
	}
}

func TestLevels_Ordered(t *testing.T) {
	got := slices.Collect(Levels())
	expected := []string{"trace", "debug", "info", "warn", "error"}

	if !slices.Equal(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestConfig_formatTime_FormatsTimestamp(t *testing.T) {
	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	tests := []struct {
		name        string
		layout      string
		contains    []string
		notContains []string
	}{
		{
			name:        "rfc3339 named layout",
			layout:      "RFC3339",
			contains:    []string{"2023-10-15T14:30:45Z"},
			notContains: []string{".123"},
		},
		{
			name:     "rfc3339 nano named layout",
			layout:   "rfc-3339-nano",
			contains: []string{"2023-10-15T14:30:45.123456789Z"},
		},
		{
			name:     "kitchen named layout",
			layout:   "Kitchen",
			contains: []string{"2:30PM"},
		},
		{
			name:     "custom layout with leading whitespace",
			layout:   "   2006-01-02 15:04:05.000Z07:00",
			contains: []string{"   2023-10-15 14:30:45.123Z"},
		},
		{
			name:     "unknown name used verbatim",
			layout:   "custom",
			contains: []string{"custom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := WithTimeLayout(tt.layout)(config{})
			result := c.formatTime(now)

			for _, s := range tt.contains {
				if !strings.Contains(result, s) {
					t.Errorf("expected %q to contain %q", result, s)
				}
			}
			for _, s := range tt.notContains {
				if strings.Contains(result, s) {
					t.Errorf("expected %q not to contain %q", result, s)
				}
			}
		})
	}
}

func TestConfig_formatTime_EmptyFormat_DisablesTimestamp(t *testing.T) {
	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	for _, layout := range []string{"", "   \t  ", "none"} {
		c := WithTimeLayout(layout)(config{})

		if result := c.formatTime(now); result != "" {
			t.Errorf("expected empty timestamp when layout is %q, got %q", layout, result)
		}
	}
}

func BenchmarkConfig_formatTime(b *testing.B) {
	c := WithTimeLayout("RFC3339Nano")(config{})
	now := time.Now()

	for b.Loop() {
		_ = c.formatTime(now)
	}
}
