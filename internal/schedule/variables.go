package schedule

import "fmt"

// Defaults holds a template's declared variable values. Variable names are
// caller-chosen identifiers, not a fixed set.
type Defaults map[string]TimeOfDay

// A Variant is a named partial override of a template's Defaults. It does not
// redefine set-points.
type Variant struct {
	Name      string
	Overrides map[string]TimeOfDay
}

// Bindings is the resolved variable table used during instantiation.
type Bindings map[string]TimeOfDay

// Bind merges defaults, an optional variant's overrides and caller-supplied
// overrides into one binding table. Later sources win: defaults < variant <
// overrides. An override for a variable not declared in defaults fails with
// ErrUnknownVariable.
func Bind(defaults Defaults, variant *Variant, overrides map[string]TimeOfDay) (Bindings, error) {
	bindings := make(Bindings, len(defaults))
	for name, value := range defaults {
		bindings[name] = value
	}
	if variant != nil {
		for name, value := range variant.Overrides {
			bindings[name] = value
		}
	}
	for name, value := range overrides {
		if _, ok := defaults[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
		}
		bindings[name] = value
	}
	return bindings, nil
}

// Modified reports whether any binding differs from the value the variant (or,
// absent one, the defaults) declares for it. The caller surfaces this as an
// advisory: the active schedule no longer matches its declared table.
func (b Bindings) Modified(defaults Defaults, variant *Variant) bool {
	for name, value := range b {
		declared, ok := defaults[name]
		if variant != nil {
			if v, overridden := variant.Overrides[name]; overridden {
				declared, ok = v, true
			}
		}
		if !ok || declared != value {
			return true
		}
	}
	return false
}
