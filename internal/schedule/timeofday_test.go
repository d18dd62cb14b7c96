package schedule_test

import (
	"testing"
	"time"

	"github.com/ConorMacBride/smart/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr assert.ErrorAssertionFunc
		want    string
	}{
		{name: "midnight", input: "00:00", wantErr: assert.NoError, want: "00:00"},
		{name: "morning", input: "08:15", wantErr: assert.NoError, want: "08:15"},
		{name: "last minute", input: "23:59", wantErr: assert.NoError, want: "23:59"},
		{name: "no leading zero", input: "8:00", wantErr: assert.Error},
		{name: "out of range", input: "24:00", wantErr: assert.Error},
		{name: "not a time", input: "breakfast", wantErr: assert.Error},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := schedule.ParseTimeOfDay(tt.input)
			tt.wantErr(t, err)
			if err == nil {
				assert.Equal(t, tt.want, parsed.String())
			}
		})
	}
}

func TestTimeOfDay_Add(t *testing.T) {
	testCases := []struct {
		name   string
		start  string
		offset time.Duration
		want   string
	}{
		{name: "within day", start: "08:00", offset: time.Hour, want: "09:00"},
		{name: "wraps past midnight", start: "23:30", offset: time.Hour, want: "00:30"},
		{name: "wraps before midnight", start: "00:00", offset: -4 * time.Hour, want: "20:00"},
		{name: "negative within day", start: "08:00", offset: -30 * time.Minute, want: "07:30"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			start, err := schedule.ParseTimeOfDay(tt.start)
			require.NoError(t, err)
			assert.Equal(t, tt.want, start.Add(tt.offset).String())
		})
	}
}

func TestTimeOfDay_UnmarshalText(t *testing.T) {
	var parsed schedule.TimeOfDay
	require.NoError(t, parsed.UnmarshalText([]byte("18:30")))
	assert.Equal(t, "18:30", parsed.String())
	assert.Error(t, parsed.UnmarshalText([]byte("25:00")))
}
