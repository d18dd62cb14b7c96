// Package poller periodically snapshots the state of the Tadoº home and
// publishes it to subscribers.
package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/ConorMacBride/smart/internal/tado"
	"github.com/ConorMacBride/smart/pkg/pubsub"
)

type Poller interface {
	Subscribe() chan Update
	Unsubscribe(ch chan Update)
	Refresh()
}

// TadoGetter is the part of the Tadoº API the poller reads.
type TadoGetter interface {
	GetZones(ctx context.Context) ([]tado.Zone, error)
	GetZoneInfo(ctx context.Context, zoneID int) (tado.ZoneInfo, error)
	GetHomeState(ctx context.Context) (tado.HomeState, error)
}

var _ Poller = &TadoPoller{}

type TadoPoller struct {
	TadoClient TadoGetter
	*pubsub.Publisher[Update]
	interval time.Duration
	logger   *slog.Logger
	refresh  chan struct{}
}

func New(tadoClient TadoGetter, interval time.Duration, logger *slog.Logger) *TadoPoller {
	return &TadoPoller{
		TadoClient: tadoClient,
		Publisher:  pubsub.New[Update](logger),
		interval:   interval,
		logger:     logger,
		refresh:    make(chan struct{}),
	}
}

func (p *TadoPoller) Run(ctx context.Context) error {
	p.logger.Debug("started", slog.Duration("interval", p.interval))
	defer p.logger.Debug("stopped")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-p.refresh:
		}
		if err := p.poll(ctx); err != nil {
			p.logger.Error("failed to get tado state", slog.Any("err", err))
		}
	}
}

// Refresh triggers an immediate poll.
func (p *TadoPoller) Refresh() {
	p.refresh <- struct{}{}
}

func (p *TadoPoller) poll(ctx context.Context) error {
	start := time.Now()
	update, err := p.update(ctx)
	if err == nil {
		p.Publisher.Publish(update)
		p.logger.Debug("poll completed", slog.Duration("duration", time.Since(start)))
	}
	return err
}

func (p *TadoPoller) update(ctx context.Context) (Update, error) {
	var update Update

	zones, err := p.TadoClient.GetZones(ctx)
	if err != nil {
		return Update{}, err
	}
	update.Zones = make(map[int]tado.Zone, len(zones))
	update.ZoneInfo = make(map[int]tado.ZoneInfo, len(zones))
	for _, zone := range zones {
		update.Zones[zone.ID] = zone
		if update.ZoneInfo[zone.ID], err = p.TadoClient.GetZoneInfo(ctx, zone.ID); err != nil {
			return Update{}, err
		}
	}

	homeState, err := p.TadoClient.GetHomeState(ctx)
	if err != nil {
		return Update{}, err
	}
	update.Home = homeState.Presence == tado.Home
	return update, nil
}
