package poller

import "github.com/ConorMacBride/smart/internal/tado"

// An Update is one snapshot of the home's state.
type Update struct {
	Zones    map[int]tado.Zone     `json:"zones"`
	ZoneInfo map[int]tado.ZoneInfo `json:"zoneInfo"`
	Home     bool                  `json:"home"`
}

// GetZoneID returns the id of the named zone.
func (u Update) GetZoneID(name string) (int, bool) {
	for zoneID, zone := range u.Zones {
		if zone.Name == name {
			return zoneID, true
		}
	}
	return 0, false
}
