package schedule

import (
	"fmt"
	"strings"

	"github.com/clambin/go-common/set"
	"github.com/pelletier/go-toml/v2"
)

// A SetPoint is one (time, temperature) instruction in a zone's table. A
// temperature of 0 means "turn the zone off".
type SetPoint struct {
	Time        Expression
	Temperature float64
}

// A Template is one parsed schedule document: a display name, variable
// defaults, named variants and one ordered set-point list per zone.
// Templates are immutable once parsed.
type Template struct {
	Name     string
	Defaults Defaults
	Variants []Variant
	Zones    map[string][]SetPoint
}

// ZoneKey converts a thermostat zone name to the key used in schedule
// documents ("Living Room" -> "living_room").
func ZoneKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// ParseTemplate parses one schedule document. The document must define a
// table for every zone in knownZones and no others; its variants must be
// uniquely named and may only override declared variables.
func ParseTemplate(doc []byte, knownZones set.Set[string]) (Template, error) {
	var raw map[string]any
	if err := toml.Unmarshal(doc, &raw); err != nil {
		return Template{}, fmt.Errorf("invalid schedule document: %w", err)
	}

	t := Template{
		Defaults: make(Defaults),
		Zones:    make(map[string][]SetPoint),
	}

	metadata, ok := raw["metadata"].(map[string]any)
	if !ok {
		return Template{}, fmt.Errorf("invalid schedule document: no metadata table")
	}
	delete(raw, "metadata")
	for key, value := range metadata {
		s, ok := value.(string)
		if !ok {
			return Template{}, fmt.Errorf("metadata %q: expected a string", key)
		}
		if key == "name" {
			t.Name = s
			continue
		}
		parsed, err := ParseTimeOfDay(s)
		if err != nil {
			return Template{}, fmt.Errorf("variable %q: %w", key, err)
		}
		t.Defaults[key] = parsed
	}
	if t.Name == "" {
		return Template{}, fmt.Errorf("invalid schedule document: metadata has no name")
	}

	variants, err := parseVariants(raw, t.Defaults)
	if err != nil {
		return Template{}, err
	}
	t.Variants = variants

	// all remaining top-level keys are zone tables
	for zone, value := range raw {
		if !knownZones.Contains(zone) {
			return Template{}, fmt.Errorf("%w: %q", ErrUnknownZone, zone)
		}
		setPoints, err := parseSetPoints(zone, value)
		if err != nil {
			return Template{}, err
		}
		t.Zones[zone] = setPoints
	}
	for _, zone := range knownZones.ListOrdered() {
		if _, ok := t.Zones[zone]; !ok {
			return Template{}, fmt.Errorf("%w: %q", ErrMissingZone, zone)
		}
	}

	return t, nil
}

func parseVariants(raw map[string]any, defaults Defaults) ([]Variant, error) {
	tables, ok := raw["variant"].([]any)
	if !ok {
		return nil, nil
	}
	delete(raw, "variant")

	names := set.New[string]()
	variants := make([]Variant, 0, len(tables))
	for _, table := range tables {
		entries, ok := table.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid variant table")
		}
		variant := Variant{Overrides: make(map[string]TimeOfDay)}
		for key, value := range entries {
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("variant %q: expected a string", key)
			}
			if key == "name" {
				variant.Name = s
				continue
			}
			if _, declared := defaults[key]; !declared {
				return nil, fmt.Errorf("%w: variant overrides undeclared %q", ErrUnknownVariable, key)
			}
			parsed, err := ParseTimeOfDay(s)
			if err != nil {
				return nil, fmt.Errorf("variant override %q: %w", key, err)
			}
			variant.Overrides[key] = parsed
		}
		if variant.Name == "" {
			return nil, fmt.Errorf("invalid variant table: no name")
		}
		if names.Contains(variant.Name) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateVariant, variant.Name)
		}
		names.Add(variant.Name)
		variants = append(variants, variant)
	}
	return variants, nil
}

func parseSetPoints(zone string, value any) ([]SetPoint, error) {
	tables, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("zone %q: expected a list of set-points", zone)
	}
	setPoints := make([]SetPoint, 0, len(tables))
	for _, table := range tables {
		entries, ok := table.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("zone %q: invalid set-point", zone)
		}
		raw, ok := entries["time"].(string)
		if !ok {
			return nil, fmt.Errorf("zone %q: set-point has no time", zone)
		}
		expr, err := ParseExpression(raw)
		if err != nil {
			return nil, fmt.Errorf("zone %q: %w", zone, err)
		}
		temperature, err := parseTemperature(entries["temperature"])
		if err != nil {
			return nil, fmt.Errorf("zone %q: %w", zone, err)
		}
		setPoints = append(setPoints, SetPoint{Time: expr, Temperature: temperature})
	}
	return setPoints, nil
}

func parseTemperature(value any) (float64, error) {
	switch v := value.(type) {
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("invalid temperature %v", value)
	}
}

// Variant returns the named variant, or nil for an empty name.
func (t *Template) Variant(name string) (*Variant, error) {
	if name == "" {
		return nil, nil
	}
	for i := range t.Variants {
		if t.Variants[i].Name == name {
			return &t.Variants[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrVariantNotFound, name)
}

// VariantNames lists the template's variant names in declaration order.
func (t *Template) VariantNames() []string {
	names := make([]string, len(t.Variants))
	for i, variant := range t.Variants {
		names[i] = variant.Name
	}
	return names
}
