package tado

import (
	"context"
	"fmt"
	"net/http"
)

// Zone is one independently controllable heating area.
type Zone struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Temperature holds a target temperature in both units, as the API requires.
type Temperature struct {
	Celsius    float64 `json:"celsius"`
	Fahrenheit float64 `json:"fahrenheit"`
}

// Percentage contains a percentage (0-100%)
type Percentage struct {
	Percentage float64 `json:"percentage"`
}

// ZoneInfo contains a zone's current state.
type ZoneInfo struct {
	Setting struct {
		Power       string `json:"power"`
		Temperature struct {
			Celsius float64 `json:"celsius"`
		} `json:"temperature"`
	} `json:"setting"`
	ActivityDataPoints struct {
		HeatingPower Percentage `json:"heatingPower"`
	} `json:"activityDataPoints"`
	SensorDataPoints struct {
		InsideTemperature struct {
			Celsius float64 `json:"celsius"`
		} `json:"insideTemperature"`
		Humidity Percentage `json:"humidity"`
	} `json:"sensorDataPoints"`
}

type Presence string

const (
	Home Presence = "HOME"
	Away Presence = "AWAY"
)

// HomeState contains the home's presence state.
type HomeState struct {
	Presence Presence `json:"presence"`
}

// GetZones retrieves the zones configured for the account's home.
func (c *APIClient) GetZones(ctx context.Context) ([]Zone, error) {
	var zones []Zone
	err := c.call(ctx, http.MethodGet, "/zones", nil, &zones)
	return zones, err
}

// GetZoneInfo retrieves the current state of one zone.
func (c *APIClient) GetZoneInfo(ctx context.Context, zoneID int) (ZoneInfo, error) {
	var zoneInfo ZoneInfo
	err := c.call(ctx, http.MethodGet, fmt.Sprintf("/zones/%d/state", zoneID), nil, &zoneInfo)
	return zoneInfo, err
}

// GetHomeState retrieves the home's presence state.
func (c *APIClient) GetHomeState(ctx context.Context) (HomeState, error) {
	var homeState HomeState
	err := c.call(ctx, http.MethodGet, "/state", nil, &homeState)
	return homeState, err
}

// SetPresence locks the home's presence to HOME or AWAY.
func (c *APIClient) SetPresence(ctx context.Context, presence Presence) error {
	request := struct {
		HomePresence Presence `json:"homePresence"`
	}{HomePresence: presence}
	return c.call(ctx, http.MethodPut, "/presenceLock", request, nil)
}
