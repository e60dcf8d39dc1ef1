package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ripmedia/internal/config"
	"ripmedia/internal/daemon"
	"ripmedia/internal/events"
	"ripmedia/internal/logging"
	"ripmedia/internal/notifications"
	"ripmedia/internal/orchestrator"
	"ripmedia/internal/pipeline"
	"ripmedia/internal/webhost"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var (
		bind     string
		port     int
		parallel int
		open     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local web UI and download queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *loaded
			flags := cmd.Flags()
			if flags.Changed("bind") {
				cfg.WebHost.Bind = bind
			}
			if flags.Changed("port") {
				if port < 0 || port > 65535 {
					return usageError("--port must be between 0 and 65535")
				}
				cfg.WebHost.Port = port
			}
			if flags.Changed("parallel") {
				if parallel < 1 {
					return usageError("--parallel must be at least 1")
				}
				cfg.WebHost.Parallel = parallel
			}
			if flags.Changed("open") {
				cfg.WebHost.OpenBrowser = open
			}
			opts, err := pipelineOptions(&cfg)
			if err != nil {
				return usageError("%v", err)
			}
			return runServe(cmd, ctx, &cfg, opts)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Address to listen on")
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "Maximum concurrent downloads")
	cmd.Flags().BoolVar(&open, "open", false, "Open the UI in a browser once listening")
	return cmd
}

func runServe(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, opts pipeline.Options) error {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	store := ctx.openHistory(cfg, logger)
	broker := events.New(events.DefaultBuffer)

	managerOpts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithPublisher(broker),
		orchestrator.WithNotifier(notifications.NewService(cfg)),
	}
	if store != nil {
		managerOpts = append(managerOpts, orchestrator.WithRecorder(store))
	}
	manager := orchestrator.New(ctx.newEngine(cfg, logger), orchestrator.Config{
		Parallel:  cfg.WebHost.Parallel,
		Pipeline:  opts,
		SpeedUnit: cfg.UI.SpeedUnit,
		Source:    "webhost",
	}, managerOpts...)

	d, err := daemon.New(cfg, store, broker, manager, logger)
	if err != nil {
		return err
	}
	runCtx := cmd.Context()
	if err := d.Start(runCtx); err != nil {
		_ = d.Close()
		return err
	}
	defer d.Close()

	url := d.URL()
	fmt.Fprintf(cmd.ErrOrStderr(), "ripmedia web UI listening on %s (Ctrl+C to stop)\n", url)
	if cfg.WebHost.OpenBrowser {
		if err := webhost.OpenBrowser(url); err != nil {
			logging.WarnWithContext(logger, "open browser failed", "browser_open_failed",
				logging.String("url", url),
				logging.Error(err),
				logging.String(logging.FieldImpact, "open the URL manually"),
			)
		}
	}

	<-runCtx.Done()
	logger.Info("shutdown requested", logging.String(logging.FieldEventType, "webhost_shutdown"))
	return nil
}
