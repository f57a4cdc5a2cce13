package main

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/vizgroup/config"
	"github.com/spektr-org/vizgroup/encode"
	"github.com/spektr-org/vizgroup/engine"
)

const version = "0.1.0"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log logr.Logger
	zl  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: logr.Discard()}

	root := &cobra.Command{
		Use:   "vizgroup",
		Short: "vizgroup - group records into stable visual encodings",
		Long: `vizgroup partitions nested records by field paths, assigns each group a
stable color, dash pattern or facet position, and prints the result.

Records are read from JSON, JSON lines, YAML or CSV files, optionally
gzip or zstd compressed.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.zl != nil {
				_ = a.zl.Sync()
			}
		},
	}
	root.SetVersionTemplate("vizgroup version {{.Version}}\n")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: ./vizgroup.yaml if present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error or a verbosity 0-9")

	root.AddCommand(
		newGroupCmd(a),
		newDiscoverCmd(a),
		newQueryCmd(a),
		newImportCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	log, zl, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	a.cfg, a.log, a.zl = cfg, log, zl
	return nil
}

func (a *app) encoder() *encode.Encoder {
	eng := engine.New(a.cfg.EngineOptions(a.log.WithName("engine"))...)
	return encode.New(eng, a.cfg.EncoderOptions()...)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the vizgroup version",
		// version needs no config or logger
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vizgroup %s\n", version)
		},
	}
}
