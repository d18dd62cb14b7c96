// Package schedules implements the CLI commands to inspect the schedule
// catalog without pushing anything to the thermostat.
package schedules

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ConorMacBride/smart/internal/schedule"
	"github.com/ConorMacBride/smart/internal/tado"
	"github.com/clambin/go-common/charmer"
	"github.com/clambin/go-common/set"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	Cmd = cobra.Command{
		Use:   "schedules",
		Short: "List the configured schedules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := loadCatalog(cmd.Context(), viper.GetViper())
			if err != nil {
				return err
			}
			return List(catalog, yaml.NewEncoder(os.Stdout))
		},
	}

	showCmd = cobra.Command{
		Use:   "show <name>",
		Short: "Resolve a schedule and print its activation plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			catalog, err := loadCatalog(cmd.Context(), viper.GetViper())
			if err != nil {
				return err
			}
			return Show(catalog, cmdArgs[0], viper.GetString("variant"), yaml.NewEncoder(os.Stdout))
		},
	}

	args = charmer.Arguments{
		"variant": {Default: "", Help: "variant to resolve"},
	}
)

func init() {
	_ = charmer.SetPersistentFlags(&showCmd, viper.GetViper(), args)
	Cmd.AddCommand(&showCmd)
}

// Encoder writes one document to the command's output.
type Encoder interface {
	Encode(any) error
}

// List writes the catalog's schedule and variant names.
func List(catalog *schedule.Catalog, e Encoder) error {
	return e.Encode(catalog.List())
}

// Show resolves one schedule with its default bindings and writes the
// resulting plan.
func Show(catalog *schedule.Catalog, name, variantName string, e Encoder) error {
	template, err := catalog.Get(name)
	if err != nil {
		return err
	}
	plan, bindings, err := template.Instantiate(variantName, nil)
	if err != nil {
		return err
	}
	return e.Encode(struct {
		Bindings schedule.Bindings `yaml:"bindings"`
		Plan     schedule.Plan     `yaml:"plan"`
	}{Bindings: bindings, Plan: plan})
}

func loadCatalog(ctx context.Context, cfg *viper.Viper) (*schedule.Catalog, error) {
	api, err := tado.New(
		cfg.GetString("tado.username"),
		cfg.GetString("tado.password"),
		cfg.GetString("tado.clientSecret"),
	)
	if err != nil {
		return nil, fmt.Errorf("tado: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	zones, err := api.GetZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("tado: zones: %w", err)
	}
	knownZones := set.New[string]()
	for _, zone := range zones {
		knownZones.Add(schedule.ZoneKey(zone.Name))
	}
	return schedule.LoadCatalog(os.DirFS(cfg.GetString("schedules.directory")), knownZones)
}
