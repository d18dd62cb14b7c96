// Package controller applies schedule activations end to end: it resolves a
// template into a plan, pushes the plan to the thermostat one zone at a time
// and, only when every push succeeded, commits the active-schedule record.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ConorMacBride/smart/internal/controller/notifier"
	"github.com/ConorMacBride/smart/internal/schedule"
	"github.com/ConorMacBride/smart/internal/tado"
	"golang.org/x/sync/errgroup"
)

// TadoClient is the part of the Tadoº API the controller needs.
type TadoClient interface {
	GetActiveTimetable(ctx context.Context, zoneID int) (int, error)
	SetTimetableBlocks(ctx context.Context, zoneID, timetableID int, blocks []tado.Block) error
	SetPresence(ctx context.Context, presence tado.Presence) error
	GetHomeState(ctx context.Context) (tado.HomeState, error)
}

type Controller struct {
	catalog         *schedule.Catalog
	client          TadoClient
	zones           map[string]int
	defaultSchedule string
	notifiers       notifier.Notifiers
	logger          *slog.Logger
	lock            sync.Mutex
}

// New creates a Controller. zones maps schedule document zone keys to
// thermostat zone ids; defaultSchedule is the schedule Reset activates.
func New(catalog *schedule.Catalog, client TadoClient, zones map[string]int, defaultSchedule string, notifiers notifier.Notifiers, logger *slog.Logger) *Controller {
	return &Controller{
		catalog:         catalog,
		client:          client,
		zones:           zones,
		defaultSchedule: defaultSchedule,
		notifiers:       notifiers,
		logger:          logger,
	}
}

func (c *Controller) List() []schedule.Info {
	return c.catalog.List()
}

func (c *Controller) Active() (schedule.Record, bool) {
	return c.catalog.Active()
}

// Activate resolves the named schedule and pushes it to every zone. The
// active-schedule record is only updated after all pushes succeeded, so a
// failed push leaves the previous record in place.
func (c *Controller) Activate(ctx context.Context, name, variantName string, overrides map[string]schedule.TimeOfDay) (schedule.Plan, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	template, err := c.catalog.Get(name)
	if err != nil {
		return nil, err
	}
	plan, bindings, err := template.Instantiate(variantName, overrides)
	if err != nil {
		return nil, err
	}

	if err = c.push(ctx, plan); err != nil {
		return nil, fmt.Errorf("push %q: %w", name, err)
	}
	c.catalog.Commit(schedule.Record{Schedule: name, Variant: variantName, Bindings: bindings})

	notification := notifier.Notification{Schedule: name, Variant: variantName, Zones: len(plan)}
	c.notifiers.Notify(notifier.Activated, notification)

	variant, _ := template.Variant(variantName)
	if bindings.Modified(template.Defaults, variant) {
		notification.Reason = "overrides persist until the schedule is activated again or reset"
		c.notifiers.Notify(notifier.BindingsModified, notification)
	}
	return plan, nil
}

// Reset activates the configured default schedule with no variant and no
// overrides.
func (c *Controller) Reset(ctx context.Context) (schedule.Plan, error) {
	plan, err := c.Activate(ctx, c.defaultSchedule, "", nil)
	if err != nil {
		return nil, err
	}
	c.notifiers.Notify(notifier.Reset, notifier.Notification{Schedule: c.defaultSchedule, Zones: len(plan)})
	return plan, nil
}

func (c *Controller) push(ctx context.Context, plan schedule.Plan) error {
	// resolve all zone ids up front: nothing is pushed for a plan naming a
	// zone the thermostat doesn't have
	type zonePush struct {
		zone   string
		zoneID int
		blocks []tado.Block
	}
	pushes := make([]zonePush, 0, len(plan))
	for zone, entries := range plan {
		zoneID, ok := c.zones[zone]
		if !ok {
			return fmt.Errorf("%w: %q", schedule.ErrUnknownZone, zone)
		}
		pushes = append(pushes, zonePush{zone: zone, zoneID: zoneID, blocks: tado.Blocks(entries)})
	}

	var g errgroup.Group
	for _, push := range pushes {
		g.Go(func() error {
			timetableID, err := c.client.GetActiveTimetable(ctx, push.zoneID)
			if err != nil {
				return fmt.Errorf("zone %q: %w", push.zone, err)
			}
			if err = c.client.SetTimetableBlocks(ctx, push.zoneID, timetableID, push.blocks); err != nil {
				return fmt.Errorf("zone %q: %w", push.zone, err)
			}
			c.logger.Debug("timetable pushed", "zone", push.zone, "blocks", len(push.blocks))
			return nil
		})
	}
	return g.Wait()
}

// SetPresence locks the home to HOME or AWAY and verifies the result.
func (c *Controller) SetPresence(ctx context.Context, presence tado.Presence) error {
	if err := c.client.SetPresence(ctx, presence); err != nil {
		return err
	}
	homeState, err := c.client.GetHomeState(ctx)
	if err != nil {
		return err
	}
	if homeState.Presence != presence {
		return fmt.Errorf("failed to update presence: home is %s", homeState.Presence)
	}
	return nil
}
