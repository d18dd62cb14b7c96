package tado

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"

	"github.com/ConorMacBride/smart/internal/schedule"
)

// ErrUnsupportedTimetable is returned for zones not configured with a
// single-day (MONDAY_TO_SUNDAY) timetable.
var ErrUnsupportedTimetable = errors.New("only single day timetables are supported")

// A Block is one contiguous segment of a zone's timetable on the wire.
type Block struct {
	DayType             string  `json:"dayType"`
	Start               string  `json:"start"`
	End                 string  `json:"end"`
	GeolocationOverride bool    `json:"geolocationOverride"`
	Setting             Setting `json:"setting"`
}

// Setting is a block's heating instruction. Temperature is nil when the
// power is OFF.
type Setting struct {
	Type        string       `json:"type"`
	Power       string       `json:"power"`
	Temperature *Temperature `json:"temperature"`
}

// GetActiveTimetable returns the id of the zone's active timetable.
func (c *APIClient) GetActiveTimetable(ctx context.Context, zoneID int) (int, error) {
	var timetable struct {
		ID   int    `json:"id"`
		Type string `json:"type"`
	}
	err := c.call(ctx, http.MethodGet, fmt.Sprintf("/zones/%d/schedule/activeTimetable", zoneID), nil, &timetable)
	if err != nil {
		return 0, err
	}
	if timetable.Type != "ONE_DAY" {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedTimetable, timetable.Type)
	}
	return timetable.ID, nil
}

// SetTimetableBlocks replaces the zone's full-week timetable with blocks.
func (c *APIClient) SetTimetableBlocks(ctx context.Context, zoneID, timetableID int, blocks []Block) error {
	endpoint := fmt.Sprintf("/zones/%d/schedule/timetables/%d/blocks/MONDAY_TO_SUNDAY", zoneID, timetableID)
	return c.call(ctx, http.MethodPut, endpoint, blocks, nil)
}

// Blocks converts a zone's resolved set-points into timetable blocks: each
// set-point runs until the next one, the last wraps around to the first, and
// blocks crossing midnight are split in two. When two set-points resolve to
// the same time the later declaration wins. A single set-point covers the
// whole day.
func Blocks(entries []schedule.Entry) []Block {
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]schedule.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	if allSameTime(sorted) {
		return []Block{newBlock("00:00", "00:00", sorted[len(sorted)-1].Temperature)}
	}

	var blocks []Block
	for i, entry := range sorted {
		start := entry.Time
		end := sorted[(i+1)%len(sorted)].Time
		if start == end {
			// duplicate time: this declaration is overridden by the next one
			continue
		}
		if end < start && start.String() != "00:00" && end.String() != "00:00" {
			// split blocks at midnight
			blocks = append(blocks,
				newBlock(start.String(), "00:00", entry.Temperature),
				newBlock("00:00", end.String(), entry.Temperature),
			)
			continue
		}
		blocks = append(blocks, newBlock(start.String(), end.String(), entry.Temperature))
	}

	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Start < blocks[j].Start })
	return blocks
}

func newBlock(start, end string, temperature float64) Block {
	setting := Setting{Type: "HEATING", Power: "OFF"}
	if temperature > 0 {
		celsius := math.Round(temperature*10) / 10
		setting.Power = "ON"
		setting.Temperature = &Temperature{
			Celsius:    celsius,
			Fahrenheit: math.Round((celsius*9/5+32)*10) / 10,
		}
	}
	return Block{
		DayType: "MONDAY_TO_SUNDAY",
		Start:   start,
		End:     end,
		Setting: setting,
	}
}

func allSameTime(entries []schedule.Entry) bool {
	for _, entry := range entries {
		if entry.Time != entries[0].Time {
			return false
		}
	}
	return true
}
