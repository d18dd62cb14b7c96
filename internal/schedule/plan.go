package schedule

import "fmt"

// An Entry is a fully resolved set-point.
type Entry struct {
	Time        TimeOfDay `json:"time"`
	Temperature float64   `json:"temperature"`
}

// A Plan holds the concrete set-points to push to the thermostat, one ordered
// list per zone. Plans are built fresh on every activation and never stored.
type Plan map[string][]Entry

// Instantiate resolves the template against the named variant and caller
// overrides. Set-points keep their declaration order; identical resolved
// times are passed through as-is.
func (t *Template) Instantiate(variantName string, overrides map[string]TimeOfDay) (Plan, Bindings, error) {
	variant, err := t.Variant(variantName)
	if err != nil {
		return nil, nil, err
	}
	bindings, err := Bind(t.Defaults, variant, overrides)
	if err != nil {
		return nil, nil, err
	}

	plan := make(Plan, len(t.Zones))
	for zone, setPoints := range t.Zones {
		entries := make([]Entry, len(setPoints))
		for i, setPoint := range setPoints {
			resolved, err := setPoint.Time.Resolve(bindings)
			if err != nil {
				return nil, nil, fmt.Errorf("zone %q: %w", zone, err)
			}
			entries[i] = Entry{Time: resolved, Temperature: setPoint.Temperature}
		}
		plan[zone] = entries
	}
	return plan, bindings, nil
}
