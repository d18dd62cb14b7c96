package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ConorMacBride/smart/internal/schedule"
	"github.com/ConorMacBride/smart/internal/tado"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_authentication(t *testing.T) {
	s := New(&fakeController{}, "secret", "v1.0", slog.New(slog.DiscardHandler))

	testCases := []struct {
		name   string
		apiKey string
		want   int
	}{
		{name: "valid key", apiKey: "secret", want: http.StatusOK},
		{name: "invalid key", apiKey: "wrong", want: http.StatusUnauthorized},
		{name: "missing key", want: http.StatusUnauthorized},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodGet, "/", nil)
			if tt.apiKey != "" {
				r.Header.Set("x-api-key", tt.apiKey)
			}
			w := httptest.NewRecorder()
			s.ServeHTTP(w, r)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestServer(t *testing.T) {
	controller := fakeController{
		schedules: []schedule.Info{{Name: "Normal Routine", Variants: []string{"Up at 9 AM"}}},
		plan: schedule.Plan{"kitchen": {
			{Time: timeOfDay(t, "08:00"), Temperature: 18},
		}},
	}
	s := New(&controller, "secret", "v1.0", slog.New(slog.DiscardHandler))

	testCases := []struct {
		name     string
		method   string
		path     string
		body     string
		want     int
		wantBody string
	}{
		{
			name:     "version",
			method:   http.MethodGet,
			path:     "/",
			want:     http.StatusOK,
			wantBody: `{"version":"v1.0"}
`,
		},
		{
			name:     "list schedules",
			method:   http.MethodGet,
			path:     "/schedules",
			want:     http.StatusOK,
			wantBody: `{"schedules":[{"name":"Normal Routine","variants":["Up at 9 AM"]}]}
`,
		},
		{
			name:   "no active schedule",
			method: http.MethodGet,
			path:   "/schedules/active",
			want:   http.StatusNoContent,
		},
		{
			name:     "activate",
			method:   http.MethodPost,
			path:     "/schedules/activate",
			body:     `{"name": "Normal Routine", "variant": "Up at 9 AM", "overrides": {"wake": "10:00"}}`,
			want:     http.StatusOK,
			wantBody: `{"kitchen":[{"time":"08:00","temperature":18}]}
`,
		},
		{
			name:   "activate without a name",
			method: http.MethodPost,
			path:   "/schedules/activate",
			body:   `{"variant": "Up at 9 AM"}`,
			want:   http.StatusUnprocessableEntity,
		},
		{
			name:   "activate with a bad override time",
			method: http.MethodPost,
			path:   "/schedules/activate",
			body:   `{"name": "Normal Routine", "overrides": {"wake": "25:00"}}`,
			want:   http.StatusUnprocessableEntity,
		},
		{
			name:   "activate with invalid json",
			method: http.MethodPost,
			path:   "/schedules/activate",
			body:   `{"name": `,
			want:   http.StatusUnprocessableEntity,
		},
		{
			name:     "reset",
			method:   http.MethodPost,
			path:     "/schedules/reset",
			want:     http.StatusOK,
			wantBody: `{"kitchen":[{"time":"08:00","temperature":18}]}
`,
		},
		{
			name:   "home",
			method: http.MethodGet,
			path:   "/tado/home",
			want:   http.StatusNoContent,
		},
		{
			name:   "away",
			method: http.MethodGet,
			path:   "/tado/away",
			want:   http.StatusNoContent,
		},
		{
			name:   "unknown path",
			method: http.MethodGet,
			path:   "/nonexistent",
			want:   http.StatusNotFound,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			r.Header.Set("x-api-key", "secret")
			w := httptest.NewRecorder()
			s.ServeHTTP(w, r)
			assert.Equal(t, tt.want, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}

	assert.Equal(t, "Normal Routine", controller.activated)
	assert.Equal(t, "Up at 9 AM", controller.variant)
	assert.Equal(t, timeOfDay(t, "10:00"), controller.overrides["wake"])
	assert.True(t, controller.resetCalled)
	assert.Equal(t, []tado.Presence{tado.Home, tado.Away}, controller.presence)
}

func TestServer_activate_active(t *testing.T) {
	controller := fakeController{
		plan: schedule.Plan{"kitchen": {}},
		record: &schedule.Record{
			Schedule: "Normal Routine",
			Bindings: schedule.Bindings{"wake": timeOfDay(t, "08:00")},
		},
	}
	s := New(&controller, "secret", "v1.0", slog.New(slog.DiscardHandler))

	r, _ := http.NewRequest(http.MethodGet, "/schedules/active", nil)
	r.Header.Set("x-api-key", "secret")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"schedule":"Normal Routine","bindings":{"wake":"08:00"}}
`, w.Body.String())
}

func TestActivationStatusCode(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{err: schedule.ErrScheduleNotFound, want: http.StatusNotFound},
		{err: schedule.ErrVariantNotFound, want: http.StatusNotFound},
		{err: schedule.ErrUnknownVariable, want: http.StatusUnprocessableEntity},
		{err: schedule.ErrUnboundVariable, want: http.StatusUnprocessableEntity},
		{err: schedule.ErrMalformedExpression, want: http.StatusUnprocessableEntity},
		{err: errors.New("api down"), want: http.StatusBadGateway},
	}

	for _, tt := range testCases {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, activationStatusCode(tt.err))
		})
	}
}

func TestServer_errors(t *testing.T) {
	controller := fakeController{
		activateErr: schedule.ErrScheduleNotFound,
		presenceErr: errors.New("api down"),
	}
	s := New(&controller, "secret", "v1.0", slog.New(slog.DiscardHandler))

	r, _ := http.NewRequest(http.MethodPost, "/schedules/activate", strings.NewReader(`{"name": "Nonexistent"}`))
	r.Header.Set("x-api-key", "secret")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)

	r, _ = http.NewRequest(http.MethodGet, "/tado/home", nil)
	r.Header.Set("x-api-key", "secret")
	w = httptest.NewRecorder()
	s.ServeHTTP(w, r)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func timeOfDay(t *testing.T, value string) schedule.TimeOfDay {
	t.Helper()
	parsed, err := schedule.ParseTimeOfDay(value)
	require.NoError(t, err)
	return parsed
}

type fakeController struct {
	schedules   []schedule.Info
	record      *schedule.Record
	plan        schedule.Plan
	activateErr error
	presenceErr error

	activated   string
	variant     string
	overrides   map[string]schedule.TimeOfDay
	resetCalled bool
	presence    []tado.Presence
}

func (f *fakeController) List() []schedule.Info {
	return f.schedules
}

func (f *fakeController) Active() (schedule.Record, bool) {
	if f.record == nil {
		return schedule.Record{}, false
	}
	return *f.record, true
}

func (f *fakeController) Activate(_ context.Context, name, variantName string, overrides map[string]schedule.TimeOfDay) (schedule.Plan, error) {
	if f.activateErr != nil {
		return nil, f.activateErr
	}
	f.activated = name
	f.variant = variantName
	f.overrides = overrides
	return f.plan, nil
}

func (f *fakeController) Reset(_ context.Context) (schedule.Plan, error) {
	if f.activateErr != nil {
		return nil, f.activateErr
	}
	f.resetCalled = true
	return f.plan, nil
}

func (f *fakeController) SetPresence(_ context.Context, presence tado.Presence) error {
	if f.presenceErr != nil {
		return f.presenceErr
	}
	f.presence = append(f.presence, presence)
	return nil
}
