package model

// FlagValue is the canonical value of a facility profile flag. Boolean
// flags use FlagTrue/FlagFalse; enum flags carry their lowercase token.
// FlagUnknown marks a field the intake never supplied, deliberately
// distinct from a known "false" so rules can tell incomplete intake from a
// negative answer.
type FlagValue string

const (
	FlagTrue    FlagValue = "true"
	FlagFalse   FlagValue = "false"
	FlagUnknown FlagValue = "unknown"
)

// Known reports whether the flag carries an actual intake value.
func (v FlagValue) Known() bool {
	return v != FlagUnknown && v != ""
}

// FacilityProfile is the canonical, immutable view of a facility derived
// from one intake submission. Editing the intake produces a new profile
// version; a profile is never partially mutated.
type FacilityProfile struct {
	FacilityID string               `json:"facility_id"`
	Version    int                  `json:"version"`
	Flags      map[string]FlagValue `json:"flags"`
}

// Flag returns the value of the named flag, or FlagUnknown if the profile
// has no entry for it.
func (p FacilityProfile) Flag(name string) FlagValue {
	if v, ok := p.Flags[name]; ok && v != "" {
		return v
	}
	return FlagUnknown
}
