package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"profileqa/app/client/oracle"
	"profileqa/app/config"
	"profileqa/app/service/dispatcher"
	"profileqa/app/service/fallback"
	"profileqa/app/service/journal"
	"profileqa/app/service/knowledge"
	"profileqa/app/transport/httpapi"
	"profileqa/app/transport/mcptool"
	"profileqa/app/util/mylog"

	"github.com/samber/do"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	mylog.Preinit()

	var configPath string

	root := &cobra.Command{
		Use:           "profileqa",
		Short:         "Answers questions about a personal profile",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the YAML config")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP and MCP server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "ask QUESTION...",
			Short: "Answer questions from the command line",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return ask(cmd, configPath, args)
			},
		},
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context, configPath string, adjust func(cfg *config.Config)) (*do.Injector, error) {
	di := do.New()
	do.ProvideValue(di, ctx)

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if adjust != nil {
		adjust(cfg)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		return nil, fmt.Errorf("logging init failed: %w", err)
	}

	do.Provide(di, knowledge.New)
	do.Provide(di, oracle.New)
	do.Provide(di, fallback.New)
	do.Provide(di, journal.New)
	do.Provide(di, dispatcher.New)
	do.Provide(di, mcptool.New)
	do.Provide(di, httpapi.New)

	return di, nil
}

func serve(ctx context.Context, configPath string) error {
	appCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	di, err := setup(appCtx, configPath, nil)
	if err != nil {
		return err
	}
	defer func() {
		slog.Info("Waiting for services to finish...")
		if err := di.Shutdown(); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	server, err := do.Invoke[*httpapi.Server](di)
	if err != nil {
		return err
	}
	kb := do.MustInvoke[*knowledge.Service](di)
	jr := do.MustInvoke[*journal.Service](di)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigint:
			slog.Info("Shutting down...")
			cancel()
		case <-appCtx.Done():
		}
	}()

	slog.Info("Service started")

	group, groupCtx := errgroup.WithContext(appCtx)
	group.Go(func() error {
		return server.Run(groupCtx)
	})
	group.Go(func() error {
		return kb.Watch(groupCtx)
	})
	group.Go(func() error {
		jr.Run(groupCtx)
		return nil
	})

	return group.Wait()
}

func ask(cmd *cobra.Command, configPath string, questions []string) error {
	di, err := setup(cmd.Context(), configPath, func(cfg *config.Config) {
		cfg.Journal.Enabled = false
	})
	if err != nil {
		return err
	}
	defer di.Shutdown()

	svc, err := do.Invoke[*dispatcher.Service](di)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, question := range questions {
		answer, err := svc.GetAnswer(cmd.Context(), question)
		if err != nil {
			return fmt.Errorf("failed to answer %q: %w", question, err)
		}

		fmt.Fprintf(out, "Pergunta: %s\nResposta: %s\n\n", question, answer)
	}

	return nil
}
