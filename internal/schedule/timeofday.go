package schedule

import (
	"fmt"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

const minutesPerDay = 24 * 60

// both digits are required: time.Parse alone would accept "8:00"
var timeOfDayPattern = regexp.MustCompile(`^[0-9]{2}:[0-9]{2}$`)

// TimeOfDay is a wall clock time without a date, stored as minutes since midnight.
type TimeOfDay int

func ParseTimeOfDay(value string) (TimeOfDay, error) {
	if !timeOfDayPattern.MatchString(value) {
		return 0, fmt.Errorf("invalid time of day %q: want HH:MM", value)
	}
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", value, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Add shifts the time by offset, wrapping around midnight in either direction.
func (t TimeOfDay) Add(offset time.Duration) TimeOfDay {
	m := (int(t) + int(offset.Minutes())) % minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return TimeOfDay(m)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *TimeOfDay) UnmarshalYAML(value *yaml.Node) error {
	return t.UnmarshalText([]byte(value.Value))
}
