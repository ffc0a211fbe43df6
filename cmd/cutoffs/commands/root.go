package commands

import (
	"context"
	"os"

	"schoolcutoffs/internal/components/chrono"
	"schoolcutoffs/internal/components/telemetry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "cutoffs",
	Short:         "cutoffs scrapes Singapore secondary school cut-off points.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "cutoffs.json5", "The json5 config file, <name>.local.json5 is merged over it.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output.")
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// env holds what every command needs, built from the config file and environment.
type env struct {
	config Config
	tel    telemetry.API
	clock  chrono.API
}

func newEnv() (env, error) {
	config, err := LoadConfig(configPath, os.LookupEnv)
	if err != nil {
		return env{}, err
	}
	clock, err := chrono.NewStandardImpl()
	if err != nil {
		return env{}, err
	}
	return env{
		config: config,
		tel:    telemetry.SlogAPI{},
		clock:  clock,
	}, nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
