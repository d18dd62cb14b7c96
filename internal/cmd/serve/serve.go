package serve

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ConorMacBride/smart/internal/collector"
	"github.com/ConorMacBride/smart/internal/controller"
	"github.com/ConorMacBride/smart/internal/controller/notifier"
	"github.com/ConorMacBride/smart/internal/health"
	"github.com/ConorMacBride/smart/internal/poller"
	"github.com/ConorMacBride/smart/internal/schedule"
	"github.com/ConorMacBride/smart/internal/server"
	"github.com/ConorMacBride/smart/internal/tado"
	"github.com/clambin/go-common/set"
	"github.com/clambin/go-common/slackbot"
	"github.com/clambin/go-common/taskmanager"
	"github.com/clambin/go-common/taskmanager/httpserver"
	promserver "github.com/clambin/go-common/taskmanager/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Cmd = cobra.Command{
	Use:   "serve",
	Short: "Run the schedule API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := New(viper.GetViper(), cmd.Root().Version, prometheus.DefaultRegisterer, slog.Default())
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		slog.Info("smart starting", "version", cmd.Root().Version)
		defer slog.Info("smart stopped")
		return m.Run(ctx)
	},
}

func New(cfg *viper.Viper, version string, registry prometheus.Registerer, logger *slog.Logger) (*taskmanager.Manager, error) {
	api, err := tado.New(
		cfg.GetString("tado.username"),
		cfg.GetString("tado.password"),
		cfg.GetString("tado.clientSecret"),
	)
	if err != nil {
		return nil, fmt.Errorf("tado: %w", err)
	}
	api.HTTPClient = &http.Client{Transport: instrumentedRoundTripper(http.DefaultTransport, registry)}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	zones, err := api.GetZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("tado: zones: %w", err)
	}
	zoneIDs := make(map[string]int, len(zones))
	knownZones := set.New[string]()
	for _, zone := range zones {
		key := schedule.ZoneKey(zone.Name)
		zoneIDs[key] = zone.ID
		knownZones.Add(key)
	}

	catalog, err := schedule.LoadCatalog(os.DirFS(cfg.GetString("schedules.directory")), knownZones)
	if err != nil {
		return nil, fmt.Errorf("schedules: %w", err)
	}

	return taskmanager.New(makeTasks(cfg, api, catalog, zoneIDs, version, registry, logger)...), nil
}

func makeTasks(cfg *viper.Viper, api *tado.APIClient, catalog *schedule.Catalog, zoneIDs map[string]int, version string, registry prometheus.Registerer, l *slog.Logger) []taskmanager.Task {
	var tasks []taskmanager.Task

	// Poller
	p := poller.New(api, cfg.GetDuration("poller.interval"), l.With("component", "poller"))
	tasks = append(tasks, p)

	// Collector
	coll := &collector.Collector{Poller: p, Catalog: catalog, Logger: l.With("component", "collector")}
	if registry != nil {
		registry.MustRegister(coll)
	}
	tasks = append(tasks, coll)

	// Prometheus server
	tasks = append(tasks, promserver.New(promserver.WithAddr(cfg.GetString("exporter.addr"))))

	// Notifiers
	notifiers := notifier.Notifiers{notifier.SLogNotifier{Logger: l.With("component", "notifier")}}
	if token := cfg.GetString("slack.token"); token != "" {
		bot := slackbot.New(
			token,
			slackbot.WithName("smart "+version),
			slackbot.WithLogger(l.With(slog.String("component", "slackbot"))),
		)
		notifiers = append(notifiers, notifier.SlackNotifier{Bot: bot})
		tasks = append(tasks, bot)
	}

	// Controller + API server
	c := controller.New(catalog, api, zoneIDs, cfg.GetString("schedules.default"), notifiers, l.With("component", "controller"))
	s := server.New(c, cfg.GetString("server.apikey"), version, l.With("component", "server"))

	// Health endpoint
	h := health.New(p, catalog, l.With("component", "health"))
	tasks = append(tasks, h)

	r := http.NewServeMux()
	r.Handle("/health", h)
	r.Handle("/", s)
	tasks = append(tasks, httpserver.New(cfg.GetString("server.addr"), r))

	return tasks
}
