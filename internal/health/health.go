// Package health serves the /health endpoint: the last state snapshot plus
// the active schedule.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/ConorMacBride/smart/internal/poller"
	"github.com/ConorMacBride/smart/internal/schedule"
)

// ActiveGetter reports the committed active-schedule record.
type ActiveGetter interface {
	Active() (schedule.Record, bool)
}

type Health struct {
	poller.Poller
	catalog ActiveGetter
	logger  *slog.Logger
	update  poller.Update
	updated bool
	lock    sync.RWMutex
}

func New(p poller.Poller, catalog ActiveGetter, logger *slog.Logger) *Health {
	return &Health{
		Poller:  p,
		catalog: catalog,
		logger:  logger,
	}
}

func (h *Health) Run(ctx context.Context) error {
	h.logger.Debug("started")
	defer h.logger.Debug("stopped")

	ch := h.Poller.Subscribe()
	defer h.Poller.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-ch:
			h.lock.Lock()
			h.update = update
			h.updated = true
			h.lock.Unlock()
		}
	}
}

func (h *Health) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.lock.RLock()
	if !h.updated {
		// release the lock first: Refresh may block on the poller while the
		// poller is publishing an update back to Run
		h.lock.RUnlock()
		http.Error(w, "no update yet", http.StatusServiceUnavailable)
		h.Poller.Refresh()
		return
	}
	defer h.lock.RUnlock()

	status := struct {
		Update poller.Update    `json:"update"`
		Active *schedule.Record `json:"active,omitempty"`
	}{Update: h.update}
	if record, ok := h.catalog.Active(); ok {
		status.Active = &record
	}

	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(status); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
