package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hackrevamp/revamp/internal/config"
	"github.com/hackrevamp/revamp/internal/notify"
	"github.com/hackrevamp/revamp/internal/server"
	"github.com/hackrevamp/revamp/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Revamp API server",
	Long:  "Start the API server that runs pipelines in the background and streams their events.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	store, err := session.NewStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}

	pipeline, err := buildPipeline(cfg)
	if err != nil {
		store.Close()
		return err
	}

	var notifiers []notify.Notifier
	if cfg.SlackEnabled() {
		notifiers = append(notifiers, notify.NewSlack(cfg.SlackBotToken, cfg.SlackChannel))
		slog.Info("slack notifications enabled", "channel", cfg.SlackChannel)
	}
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			slog.Warn("telegram notifier disabled", "error", err)
		} else {
			notifiers = append(notifiers, tg)
			slog.Info("telegram notifications enabled", "chat", cfg.TelegramChatID)
		}
	}

	srv := server.New(cfg, store, pipeline, notifiers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
	}()

	return srv.Start(ctx)
}
