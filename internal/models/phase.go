package models

import "fmt"

// Phase identifies one of the two typing segments.
type Phase string

const (
	PhaseBaseline Phase = "baseline"
	PhaseEssay    Phase = "essay"
)

// Phases lists every phase in the order they are run and exported.
var Phases = []Phase{PhaseBaseline, PhaseEssay}

// ParsePhase accepts only the two literal phase names.
func ParsePhase(s string) (Phase, error) {
	switch Phase(s) {
	case PhaseBaseline, PhaseEssay:
		return Phase(s), nil
	}
	return "", fmt.Errorf("unknown phase %q", s)
}

func (p Phase) String() string { return string(p) }

// UnmarshalText rejects anything but "baseline" or "essay", so decoded
// payloads can never carry a third phase.
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
