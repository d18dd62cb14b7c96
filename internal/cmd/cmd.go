package cmd

import (
	"log/slog"
	"os"
	"time"

	"github.com/ConorMacBride/smart/internal/cmd/schedules"
	"github.com/ConorMacBride/smart/internal/cmd/serve"
	"github.com/clambin/go-common/charmer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configFilename string
	RootCmd        = cobra.Command{
		Use:   "smart",
		Short: "Declarative heating schedules for Tadoº thermostats",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var opts slog.HandlerOptions
			if viper.GetBool("debug") {
				opts.Level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &opts)))
		},
	}
)

var args = charmer.Arguments{
	"debug":               charmer.Argument{Default: false, Help: "Log debug messages"},
	"tado.username":       charmer.Argument{Default: "", Help: "Tadoº username"},
	"tado.password":       charmer.Argument{Default: "", Help: "Tadoº password"},
	"tado.clientSecret":   charmer.Argument{Default: "", Help: "Tadoº client secret"},
	"server.addr":         charmer.Argument{Default: ":8080", Help: "Address of the schedule API server"},
	"server.apikey":       charmer.Argument{Default: "", Help: "API key expected in the x-api-key header"},
	"schedules.directory": charmer.Argument{Default: "schedules", Help: "Directory holding the schedule documents"},
	"schedules.default":   charmer.Argument{Default: "", Help: "Schedule activated by a reset"},
	"exporter.addr":       charmer.Argument{Default: ":9090", Help: "Address of Prometheus exporter"},
	"poller.interval":     charmer.Argument{Default: 5 * time.Minute, Help: "Poller interval"},
	"slack.token":         charmer.Argument{Default: "", Help: "Slack token (activation notifications)"},
}

func init() {
	cobra.OnInitialize(initConfig)
	RootCmd.PersistentFlags().StringVar(&configFilename, "config", "", "Configuration file")
	RootCmd.PersistentFlags().Bool("debug", false, "Log debug messages")
	_ = viper.BindPFlag("debug", RootCmd.PersistentFlags().Lookup("debug"))

	RootCmd.AddCommand(&serve.Cmd, &schedules.Cmd)
}

func initConfig() {
	if configFilename != "" {
		viper.SetConfigFile(configFilename)
	} else {
		viper.AddConfigPath("/etc/smart/")
		viper.AddConfigPath("$HOME/.smart")
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
	}

	if err := charmer.SetDefaults(viper.GetViper(), args); err != nil {
		panic("failed to set viper defaults: " + err.Error())
	}

	viper.SetEnvPrefix("SMART")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		slog.Error("failed to read config file", "err", err)
		os.Exit(1)
	}
}
