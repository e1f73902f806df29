package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/park285/offline-puzzles/internal/bridge"
	appcfg "github.com/park285/offline-puzzles/internal/config"
	"github.com/park285/offline-puzzles/internal/progress"
	"github.com/park285/offline-puzzles/internal/render"
	"github.com/park285/offline-puzzles/internal/settings"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the GUI shell bridge",
	Long: `Starts the event loop, the websocket bridge and the settings file watcher.
Stops on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (default $LISTEN_ADDR or "+appcfg.DefaultListenAddr+")")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := cfg.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}

	prog, err := progress.Open(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("open progress store: %w", err)
	}
	defer prog.Close()

	store := openStore()
	loop := bridge.NewLoop(store,
		bridge.WithProgress(prog),
		bridge.WithLoopMessages(catalog),
		bridge.WithLoopLogger(logger),
	)
	srv := bridge.NewServer(loop, render.New())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(gctx) })
	g.Go(func() error { return srv.ListenAndServe(gctx, addr) })
	g.Go(func() error {
		err := settings.Watch(gctx, store, func(c settings.Config) {
			loop.Post(settings.FileChangedMsg{Config: c})
		})
		if err != nil && gctx.Err() == nil {
			// the bridge keeps working without live reload
			logger.Warn("settings watcher stopped", zap.String("path", store.Path()), zap.Error(err))
		}
		return nil
	})

	logger.Info("offline-puzzles serving",
		zap.String("addr", addr),
		zap.String("settings", store.Path()),
	)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
