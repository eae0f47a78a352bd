package timecode

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int64
		expected string
	}{
		{"Zero", 0, "00:00"},
		{"Seconds", 5, "00:05"},
		{"Minutes", 754, "12:34"},
		{"Just under an hour", 3599, "59:59"},
		{"One hour", 3600, "1:00:00"},
		{"Hour with parts", 3723, "1:02:03"},
		{"Many hours", 100 * 3600, "100:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.seconds); got != tt.expected {
				t.Errorf("Format(%d) = %s; want %s", tt.seconds, got, tt.expected)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"0", 0},
		{"45", 45},
		{"0:30", 30},
		{"12:34", 754},
		{"1:02:03", 3723},
		{"1:75", 135},
		{"1:0:0:0", 216000},
		{" 2:00 ", 120},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %d; want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "abc", "1::2", "-5", "1:-2", "1.5", ":30", "99999999999999999999"} {
		if _, err := Parse(input); !errors.Is(err, ErrInvalid) {
			t.Errorf("Parse(%q) error = %v; want ErrInvalid", input, err)
		}
	}
}

func TestParseRejectsOverflow(t *testing.T) {
	if _, err := Parse("1:0:0:0:0:0:0:0:0:0:0:0"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected overflow to be rejected, got %v", err)
	}
	if got, err := Parse("0:0:0:0:0:0:0:0:0:0:0:0:7"); err != nil || got != 7 {
		t.Fatalf("zero high segments should not overflow, got %d, %v", got, err)
	}
}

func TestParseDisplayed(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"00:05", 5, true},
		{"12:34", 754, true},
		{"1:02:03", 3723, true},
		{"75:00", 4500, true},
		{"1:75:00", 0, false},
		{"12:60", 0, false},
		{"5", 0, false},
		{"1:2:3:4", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseDisplayed(tt.input)
		if tt.ok && err != nil {
			t.Fatalf("ParseDisplayed(%q) returned error: %v", tt.input, err)
		}
		if !tt.ok && err == nil {
			t.Fatalf("ParseDisplayed(%q) = %d; expected error", tt.input, got)
		}
		if got != tt.want {
			t.Errorf("ParseDisplayed(%q) = %d; want %d", tt.input, got, tt.want)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, seconds := range []int64{0, 1, 59, 60, 3599, 3600, 86399, 360000} {
		got, err := Parse(Format(seconds))
		if err != nil || got != seconds {
			t.Errorf("round trip of %d gave %d, %v", seconds, got, err)
		}
	}
}
