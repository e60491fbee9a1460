// Package intake normalizes raw intake submissions into canonical facility
// profiles. Normalization is pure and deterministic: the same payload and
// schema always yield the same profile, and a schema violation produces no
// partial result.
package intake

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/r2ready/internal/model"
)

// FlagType is the declared shape of a canonical profile flag.
type FlagType string

const (
	FlagBool FlagType = "bool"
	FlagEnum FlagType = "enum"
)

// FlagSpec declares one canonical profile flag and the intake field it is
// derived from. The set of FlagSpecs is the flag universe rule predicates
// are validated against.
type FlagSpec struct {
	Name        string   `json:"name" yaml:"name"`
	IntakeField string   `json:"intake_field,omitempty" yaml:"intake_field,omitempty"`
	Type        FlagType `json:"type" yaml:"type"`
	Values      []string `json:"values,omitempty" yaml:"values,omitempty"`
}

// field returns the raw payload key this flag reads from.
func (s FlagSpec) field() string {
	if s.IntakeField != "" {
		return s.IntakeField
	}
	return s.Name
}

// FieldError describes one offending intake field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports every schema violation in a submission at once,
// so the caller can surface all of them to the submitter in one round trip.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Reason)
	}
	return "intake: invalid submission: " + strings.Join(parts, "; ")
}

// Normalize maps a raw intake payload onto the canonical flag schema.
// Missing fields become model.FlagUnknown, explicitly distinct from a
// known false, so downstream rules can tell incomplete intake from a
// negative answer. Any schema violation fails the whole submission with a
// *ValidationError listing the offending fields.
func Normalize(facilityID string, version int, raw map[string]any, schema []FlagSpec) (model.FacilityProfile, error) {
	profile := model.FacilityProfile{
		FacilityID: facilityID,
		Version:    version,
		Flags:      make(map[string]model.FlagValue, len(schema)),
	}

	known := make(map[string]bool, len(schema))
	var verr ValidationError

	for _, spec := range schema {
		known[spec.field()] = true

		v, ok := raw[spec.field()]
		if !ok || v == nil {
			profile.Flags[spec.Name] = model.FlagUnknown
			continue
		}

		fv, reason := coerce(v, spec)
		if reason != "" {
			verr.Fields = append(verr.Fields, FieldError{Field: spec.field(), Reason: reason})
			continue
		}
		profile.Flags[spec.Name] = fv
	}

	// Unrecognized fields are a schema violation: a typo in an intake form
	// binding must not silently drop data.
	for k := range raw {
		if !known[k] {
			verr.Fields = append(verr.Fields, FieldError{Field: k, Reason: "not part of the intake schema"})
		}
	}

	if len(verr.Fields) > 0 {
		sort.Slice(verr.Fields, func(i, j int) bool { return verr.Fields[i].Field < verr.Fields[j].Field })
		return model.FacilityProfile{}, &verr
	}

	zap.L().Debug("intake: normalized submission",
		zap.String("facility_id", facilityID),
		zap.Int("version", version),
		zap.Int("flags", len(profile.Flags)),
	)
	return profile, nil
}

// coerce converts one raw value to a FlagValue per its spec. The empty
// reason string means success.
func coerce(v any, spec FlagSpec) (model.FlagValue, string) {
	switch spec.Type {
	case FlagBool:
		switch t := v.(type) {
		case bool:
			if t {
				return model.FlagTrue, ""
			}
			return model.FlagFalse, ""
		case string:
			switch strings.ToLower(strings.TrimSpace(t)) {
			case "true", "yes", "y":
				return model.FlagTrue, ""
			case "false", "no", "n":
				return model.FlagFalse, ""
			}
			return "", fmt.Sprintf("expected a boolean, got %q", t)
		default:
			return "", fmt.Sprintf("expected a boolean, got %T", v)
		}

	case FlagEnum:
		s, ok := v.(string)
		if !ok {
			return "", fmt.Sprintf("expected one of %v, got %T", spec.Values, v)
		}
		norm := strings.ToLower(strings.TrimSpace(s))
		for _, allowed := range spec.Values {
			if norm == strings.ToLower(allowed) {
				return model.FlagValue(norm), ""
			}
		}
		return "", fmt.Sprintf("value %q not in %v", s, spec.Values)

	default:
		return "", fmt.Sprintf("flag %s has unknown type %q", spec.Name, spec.Type)
	}
}
