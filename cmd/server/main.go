package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soaringjerry/Jornada/internal/config"
	"github.com/soaringjerry/Jornada/internal/logging"
)

// Set at build time with -ldflags "-X main.commit=... -X main.buildTime=...".
var (
	commit    string
	buildTime string
)

type rootOptions struct {
	configPath string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "jornada",
		Short:         "Jornada do Respeito game server and report tooling",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file (env JORNADA_CONFIG)")
	root.AddCommand(newServeCmd(opts), newReportsCmd(opts), newImportCmd(opts))
	return root
}

// setup loads config and builds the logger every command shares.
func setup(opts *rootOptions) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Commit == "" {
		cfg.Commit = commit
	}
	if cfg.BuildTime == "" {
		cfg.BuildTime = buildTime
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log, nil
}
