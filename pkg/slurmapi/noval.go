package slurmapi

import "encoding/json"

// NoVal is slurmrestd's tri-state numeric envelope: {number, set, infinite}.
// A value is present only when Set is true. Infinite marks an unbounded
// quantity (e.g. an unlimited time limit) and is carried through as-is.
type NoVal struct {
	Number   float64 `json:"number"`
	Set      bool    `json:"set"`
	Infinite bool    `json:"infinite"`
}

// NewNoVal wraps n in a set, finite envelope.
func NewNoVal(n int) NoVal {
	return NoVal{Number: float64(n), Set: true}
}

// UnmarshalJSON decodes leniently: a missing, null, or malformed envelope
// reads as unset so a single bad field never fails the enclosing record.
func (v *NoVal) UnmarshalJSON(b []byte) error {
	*v = NoVal{}
	var w struct {
		Number   *float64 `json:"number"`
		Set      *bool    `json:"set"`
		Infinite *bool    `json:"infinite"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return nil
	}
	if w.Number != nil {
		v.Number = *w.Number
	}
	if w.Set != nil {
		v.Set = *w.Set
	}
	if w.Infinite != nil {
		v.Infinite = *w.Infinite
	}
	return nil
}

// Int returns the envelope value as an integer when set.
func (v NoVal) Int() (int, bool) {
	if !v.Set {
		return 0, false
	}
	return int(v.Number), true
}

// Float returns the envelope value when set. Timestamps use this form
// because slurmdbd reports sub-second precision.
func (v NoVal) Float() (float64, bool) {
	if !v.Set {
		return 0, false
	}
	return v.Number, true
}
