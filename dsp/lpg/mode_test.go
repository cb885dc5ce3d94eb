package lpg

import "testing"

func TestModeString(t *testing.T) {
	cases := []struct {
		mode Mode
		want string
	}{
		{ModeLowPass, "lowpass"},
		{ModeVCA, "vca"},
		{ModeBoth, "both"},
		{Mode(99), "unknown"},
	}

	for _, c := range cases {
		if got := c.mode.String(); got != c.want {
			t.Errorf("Mode(%d).String() = %q, want %q", int(c.mode), got, c.want)
		}
	}
}

func TestParseModeRoundTrip(t *testing.T) {
	for _, mode := range Modes() {
		parsed, err := ParseMode(mode.String())
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", mode.String(), err)
		}

		if parsed != mode {
			t.Fatalf("ParseMode(%q) = %v, want %v", mode.String(), parsed, mode)
		}
	}
}

func TestParseModeUnknown(t *testing.T) {
	if _, err := ParseMode("highpass"); err == nil {
		t.Fatal("expected error for unknown mode name")
	}
}

func TestModesAreValid(t *testing.T) {
	for _, mode := range Modes() {
		if !validMode(mode) {
			t.Errorf("Modes() returned invalid mode %v", mode)
		}
	}

	if validMode(Mode(-1)) || validMode(Mode(3)) {
		t.Error("out-of-range mode reported valid")
	}
}
