package plan

import (
	"strings"
	"testing"
)

func TestSanitizePathComponent(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Normal Name", "Normal Name"},
		{"AC/DC: Live", "AC-DC- Live"},
		{"What?", "What"},
		{`Say "Hi"`, "Say 'Hi'"},
		{"  trailing dots...  ", "trailing dots"},
		{"a\tb   c", "a b c"},
		{"Artist-Title-()-1993", "Artist-Title-1993"},
		{"Artist--Title", "Artist-Title"},
		{"Beyoncé", "Beyoncé"},
		{"", "Unknown"},
		{"...", "Unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := SanitizePathComponent(tc.input)
			if result != tc.expected {
				t.Errorf("SanitizePathComponent(%q) = %q, expected %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestSanitizePathComponentLength(t *testing.T) {
	long := strings.Repeat("ü", 150) // 300 bytes
	result := SanitizePathComponent(long)
	if len(result) > 200 {
		t.Errorf("expected at most 200 bytes, got %d", len(result))
	}
	if !strings.HasPrefix(long, result) {
		t.Error("truncation must not split a rune")
	}
}

func TestRenderName(t *testing.T) {
	v := Values{
		"%ALBARTIST%": "AC/DC",
		"%ALBTITLE%":  "Live",
		"%YEAR%":      "1992",
		"%TYPE%":      ".flac",
	}

	if got := RenderName("%ALBARTIST%-%ALBTITLE%-%YEAR%", v); got != "AC-DC-Live-1992" {
		t.Errorf("RenderName = %q", got)
	}
	if got := RenderName("%ALBTITLE%%TYPE%", v); got != "Live.flac" {
		t.Errorf("RenderName with type = %q", got)
	}
	if got := RenderName("%ALBTITLE% %UNKNOWN%", v); got != "Live %UNKNOWN%" {
		t.Errorf("unknown tokens should stay, got %q", got)
	}
}

func TestExpandKeepsRawValues(t *testing.T) {
	v := Values{"%DISCNUMBER%": "2", "%DISCTITLE%": "Live: Part 2"}
	if got := Expand(" (disc %DISCNUMBER%: %DISCTITLE%)", v); got != " (disc 2: Live: Part 2)" {
		t.Errorf("Expand = %q", got)
	}
}

func TestFormatDefaults(t *testing.T) {
	f := Format{Dir: "%ALBTITLE%"}.withDefaults()
	if f.Dir != "%ALBTITLE%" {
		t.Errorf("explicit template overwritten: %q", f.Dir)
	}
	if f.Song != DefaultFormat().Song || f.DiscFolder != DefaultFormat().DiscFolder {
		t.Errorf("defaults not applied: %+v", f)
	}
}
