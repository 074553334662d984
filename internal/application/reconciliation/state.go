package reconciliation

import (
	"fmt"
	"strings"
)

// State etapa de una conciliación.
type State uint8

const (
	StateParsed State = iota + 1
	StateMatched
	StateReviewed
	StateCommitting
	StateCommitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateMatched:
		return "matched"
	case StateReviewed:
		return "reviewed"
	case StateCommitting:
		return "committing"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// MarshalText serializa el estado por nombre.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText es la contraparte de MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(b)))
	for st := StateParsed; st <= StateFailed; st++ {
		if st.String() == name {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("estado desconocido: %q", b)
}

// Terminal indica si el estado ya no admite transiciones.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateFailed
}

// transitions transiciones legales. Matched → Matched permite repetir el matching.
var transitions = map[State][]State{
	StateParsed:     {StateMatched, StateFailed},
	StateMatched:    {StateMatched, StateReviewed, StateFailed},
	StateReviewed:   {StateCommitting, StateFailed},
	StateCommitting: {StateCommitted, StateFailed},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
