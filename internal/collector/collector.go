// Package collector exports the home's state and the active schedule as
// Prometheus metrics.
package collector

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ConorMacBride/smart/internal/poller"
	"github.com/ConorMacBride/smart/internal/schedule"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	zoneTargetTempCelsius = prometheus.NewDesc(
		prometheus.BuildFQName("smart", "zone", "target_temp_celsius"),
		"Target temperature of this zone in degrees celsius",
		[]string{"zone_name"},
		nil,
	)
	zonePowerState = prometheus.NewDesc(
		prometheus.BuildFQName("smart", "zone", "power_state"),
		"Power status of this zone",
		[]string{"zone_name"},
		nil,
	)
	zoneTemperatureCelsius = prometheus.NewDesc(
		prometheus.BuildFQName("smart", "zone", "temperature_celsius"),
		"Current temperature of this zone in degrees celsius",
		[]string{"zone_name"},
		nil,
	)
	zoneHeatingPercentage = prometheus.NewDesc(
		prometheus.BuildFQName("smart", "zone", "heating_percentage"),
		"Current heating percentage in this zone (0-100)",
		[]string{"zone_name"},
		nil,
	)
	zoneHumidityPercentage = prometheus.NewDesc(
		prometheus.BuildFQName("smart", "zone", "humidity_percentage"),
		"Current humidity percentage in this zone",
		[]string{"zone_name"},
		nil,
	)
	homeState = prometheus.NewDesc(
		prometheus.BuildFQName("smart", "home", "state"),
		"1 if the home is in HOME mode",
		nil,
		nil,
	)
	activeSchedule = prometheus.NewDesc(
		prometheus.BuildFQName("smart", "schedule", "active"),
		"Active schedule. Constant 1, labeled by schedule and variant name",
		[]string{"schedule", "variant"},
		nil,
	)
)

// ActiveGetter reports the committed active-schedule record.
type ActiveGetter interface {
	Active() (schedule.Record, bool)
}

type Collector struct {
	Poller  poller.Poller
	Catalog ActiveGetter
	Logger  *slog.Logger

	update  poller.Update
	updated bool
	lock    sync.RWMutex
}

var _ prometheus.Collector = &Collector{}

func (c *Collector) Run(ctx context.Context) error {
	c.Logger.Debug("started")
	defer c.Logger.Debug("stopped")

	ch := c.Poller.Subscribe()
	defer c.Poller.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-ch:
			c.lock.Lock()
			c.update = update
			c.updated = true
			c.lock.Unlock()
		}
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- zoneTargetTempCelsius
	ch <- zonePowerState
	ch <- zoneTemperatureCelsius
	ch <- zoneHeatingPercentage
	ch <- zoneHumidityPercentage
	ch <- homeState
	ch <- activeSchedule
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if record, ok := c.Catalog.Active(); ok {
		ch <- prometheus.MustNewConstMetric(activeSchedule, prometheus.GaugeValue, 1, record.Schedule, record.Variant)
	}

	c.lock.RLock()
	defer c.lock.RUnlock()
	if !c.updated {
		return
	}

	ch <- prometheus.MustNewConstMetric(homeState, prometheus.GaugeValue, boolToFloat(c.update.Home))
	for zoneID, zone := range c.update.Zones {
		info := c.update.ZoneInfo[zoneID]
		ch <- prometheus.MustNewConstMetric(zoneTargetTempCelsius, prometheus.GaugeValue, info.Setting.Temperature.Celsius, zone.Name)
		ch <- prometheus.MustNewConstMetric(zonePowerState, prometheus.GaugeValue, boolToFloat(info.Setting.Power == "ON"), zone.Name)
		ch <- prometheus.MustNewConstMetric(zoneTemperatureCelsius, prometheus.GaugeValue, info.SensorDataPoints.InsideTemperature.Celsius, zone.Name)
		ch <- prometheus.MustNewConstMetric(zoneHeatingPercentage, prometheus.GaugeValue, info.ActivityDataPoints.HeatingPower.Percentage, zone.Name)
		ch <- prometheus.MustNewConstMetric(zoneHumidityPercentage, prometheus.GaugeValue, info.SensorDataPoints.Humidity.Percentage, zone.Name)
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
