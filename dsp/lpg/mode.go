package lpg

import "fmt"

// Mode selects which signal path of the gate is active.
type Mode int

const (
	// ModeLowPass runs the input through the resonant low-pass filter
	// only; the envelope is ignored entirely.
	ModeLowPass Mode = iota
	// ModeVCA scales the input by the envelope value only.
	ModeVCA
	// ModeBoth couples the envelope to both amplitude and effective
	// cutoff, mimicking the coupled low-pass gate circuit topology.
	ModeBoth
)

// Modes returns all valid modes in declaration order. Dispatch sites and
// tests iterate this so adding a mode forces handling it everywhere.
func Modes() []Mode {
	return []Mode{ModeLowPass, ModeVCA, ModeBoth}
}

func (m Mode) String() string {
	switch m {
	case ModeLowPass:
		return "lowpass"
	case ModeVCA:
		return "vca"
	case ModeBoth:
		return "both"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name to its Mode value.
func ParseMode(name string) (Mode, error) {
	for _, m := range Modes() {
		if m.String() == name {
			return m, nil
		}
	}

	return ModeLowPass, fmt.Errorf("lpg: unknown mode: %q", name)
}

func validMode(m Mode) bool {
	return m >= ModeLowPass && m <= ModeBoth
}
