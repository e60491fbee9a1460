package model

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Predicate is a tagged boolean expression over facility profile flags.
// Exactly one of Flag, All, Any, or Not is set per node. It is plain data,
// never executable code, so rule catalogs can be statically validated at
// load time.
//
// YAML form:
//
//	all:
//	  - flag: hasHazardousWasteFacilities
//	    equals: true
//	  - not:
//	      flag: brokeringOnly
//	      equals: true
type Predicate struct {
	Flag   string      `json:"flag,omitempty"`
	Equals FlagValue   `json:"equals,omitempty"`
	All    []Predicate `json:"all,omitempty"`
	Any    []Predicate `json:"any,omitempty"`
	Not    *Predicate  `json:"not,omitempty"`
}

// predicateYAML mirrors Predicate for decoding. Equals is `any` so that
// bare YAML booleans (`equals: true`) and enum strings both parse.
type predicateYAML struct {
	Flag   string          `yaml:"flag"`
	Equals any             `yaml:"equals"`
	All    []predicateYAML `yaml:"all"`
	Any    []predicateYAML `yaml:"any"`
	Not    *predicateYAML  `yaml:"not"`
}

// UnmarshalYAML decodes a predicate node, normalizing boolean comparison
// values to FlagTrue/FlagFalse.
func (p *Predicate) UnmarshalYAML(node *yaml.Node) error {
	var raw predicateYAML
	if err := node.Decode(&raw); err != nil {
		return eris.Wrap(err, "model: decode predicate")
	}
	out, err := raw.convert()
	if err != nil {
		return err
	}
	*p = out
	return nil
}

func (r predicateYAML) convert() (Predicate, error) {
	p := Predicate{Flag: r.Flag}

	switch v := r.Equals.(type) {
	case nil:
	case bool:
		if v {
			p.Equals = FlagTrue
		} else {
			p.Equals = FlagFalse
		}
	case string:
		p.Equals = FlagValue(strings.ToLower(strings.TrimSpace(v)))
	default:
		return p, eris.Errorf("model: predicate equals has unsupported type %T", r.Equals)
	}

	for _, c := range r.All {
		cc, err := c.convert()
		if err != nil {
			return p, err
		}
		p.All = append(p.All, cc)
	}
	for _, c := range r.Any {
		cc, err := c.convert()
		if err != nil {
			return p, err
		}
		p.Any = append(p.Any, cc)
	}
	if r.Not != nil {
		cc, err := r.Not.convert()
		if err != nil {
			return p, err
		}
		p.Not = &cc
	}
	return p, nil
}

// Eval evaluates the predicate against a profile. A flag comparison against
// an unknown profile value is false, whatever the comparison value: rules
// never trigger off incomplete intake.
func (p Predicate) Eval(profile FacilityProfile) bool {
	switch {
	case p.Flag != "":
		actual := profile.Flag(p.Flag)
		if !actual.Known() {
			return false
		}
		return actual == p.Equals
	case len(p.All) > 0:
		for _, c := range p.All {
			if !c.Eval(profile) {
				return false
			}
		}
		return true
	case len(p.Any) > 0:
		for _, c := range p.Any {
			if c.Eval(profile) {
				return true
			}
		}
		return false
	case p.Not != nil:
		return !p.Not.Eval(profile)
	}
	// Empty predicate: vacuously true (an unconditional rule).
	return true
}

// Flags returns every flag name the predicate references.
func (p Predicate) Flags() []string {
	var out []string
	p.walk(func(n Predicate) {
		if n.Flag != "" {
			out = append(out, n.Flag)
		}
	})
	return out
}

// Validate checks structural sanity: each node must be exactly one of a
// flag comparison, all, any, or not.
func (p Predicate) Validate() error {
	var errs []string
	p.walk(func(n Predicate) {
		set := 0
		if n.Flag != "" {
			set++
		}
		if len(n.All) > 0 {
			set++
		}
		if len(n.Any) > 0 {
			set++
		}
		if n.Not != nil {
			set++
		}
		if set > 1 {
			errs = append(errs, fmt.Sprintf("node mixes forms (flag=%q)", n.Flag))
		}
		if n.Flag != "" && n.Equals == "" {
			errs = append(errs, fmt.Sprintf("flag %q has no comparison value", n.Flag))
		}
	})
	if len(errs) > 0 {
		return eris.Errorf("model: invalid predicate: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (p Predicate) walk(fn func(Predicate)) {
	fn(p)
	for _, c := range p.All {
		c.walk(fn)
	}
	for _, c := range p.Any {
		c.walk(fn)
	}
	if p.Not != nil {
		p.Not.walk(fn)
	}
}
