package schedule_test

import (
	"testing"

	"github.com/ConorMacBride/smart/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBind(t *testing.T) {
	defaults := schedule.Defaults{
		"wake":  mustParseTimeOfDay(t, "07:00"),
		"sleep": mustParseTimeOfDay(t, "22:00"),
	}
	variant := schedule.Variant{
		Name:      "late start",
		Overrides: map[string]schedule.TimeOfDay{"wake": mustParseTimeOfDay(t, "09:00")},
	}

	t.Run("defaults only", func(t *testing.T) {
		bindings, err := schedule.Bind(defaults, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, schedule.Bindings(defaults), bindings)
	})

	t.Run("variant overrides defaults", func(t *testing.T) {
		bindings, err := schedule.Bind(defaults, &variant, nil)
		require.NoError(t, err)
		assert.Equal(t, "09:00", bindings["wake"].String())
		assert.Equal(t, "22:00", bindings["sleep"].String())
	})

	t.Run("caller overrides variant", func(t *testing.T) {
		overrides := map[string]schedule.TimeOfDay{"wake": mustParseTimeOfDay(t, "10:00")}
		bindings, err := schedule.Bind(defaults, &variant, overrides)
		require.NoError(t, err)
		assert.Equal(t, "10:00", bindings["wake"].String())
		assert.Equal(t, "22:00", bindings["sleep"].String())
	})

	t.Run("undeclared override is rejected", func(t *testing.T) {
		overrides := map[string]schedule.TimeOfDay{"dinner": mustParseTimeOfDay(t, "18:00")}
		_, err := schedule.Bind(defaults, nil, overrides)
		assert.ErrorIs(t, err, schedule.ErrUnknownVariable)
	})
}

func TestBindings_Modified(t *testing.T) {
	defaults := schedule.Defaults{"wake": mustParseTimeOfDay(t, "07:00")}
	variant := schedule.Variant{
		Name:      "late start",
		Overrides: map[string]schedule.TimeOfDay{"wake": mustParseTimeOfDay(t, "09:00")},
	}

	t.Run("unmodified defaults", func(t *testing.T) {
		bindings, err := schedule.Bind(defaults, nil, nil)
		require.NoError(t, err)
		assert.False(t, bindings.Modified(defaults, nil))
	})

	t.Run("unmodified variant", func(t *testing.T) {
		bindings, err := schedule.Bind(defaults, &variant, nil)
		require.NoError(t, err)
		assert.False(t, bindings.Modified(defaults, &variant))
	})

	t.Run("caller override modifies", func(t *testing.T) {
		overrides := map[string]schedule.TimeOfDay{"wake": mustParseTimeOfDay(t, "06:00")}
		bindings, err := schedule.Bind(defaults, &variant, overrides)
		require.NoError(t, err)
		assert.True(t, bindings.Modified(defaults, &variant))
	})

	t.Run("override matching declared value does not modify", func(t *testing.T) {
		overrides := map[string]schedule.TimeOfDay{"wake": mustParseTimeOfDay(t, "09:00")}
		bindings, err := schedule.Bind(defaults, &variant, overrides)
		require.NoError(t, err)
		assert.False(t, bindings.Modified(defaults, &variant))
	})
}
