package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/payops/payday-bot/internal/config"
	"github.com/payops/payday-bot/internal/dispatch"
	"github.com/payops/payday-bot/internal/messenger"
	"github.com/payops/payday-bot/internal/parser"
	"github.com/payops/payday-bot/internal/render"
	"github.com/payops/payday-bot/internal/track"
)

// payday is the operator CLI: it runs the same parse/dispatch/report pipeline
// as the server, against a local CSV, without going through Slack events.

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "payday",
		Short:        "Payroll notification tooling",
		SilenceUsage: true,
	}
	root.AddCommand(newSendCmd())
	return root
}

func newSendCmd() *cobra.Command {
	var filePath, channel string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Dispatch a payroll CSV and post the delivery report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Printf("Warning: could not load .env file: %v", err)
			}

			cfg, err := config.New()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			logger, err := newLogger(cfg.Debug)
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			defer logger.Sync()
			sugar := logger.Sugar()

			rows, err := parser.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("failed to read payroll file: %w", err)
			}

			slackMessenger := messenger.NewSlackMessenger(cfg.SlackBotToken, cfg.Debug, sugar)
			tracker := track.NewConfirmationTracker(cfg.TrackerRetention, sugar)
			defer tracker.Stop()

			dispatcher := dispatch.NewDispatcher(slackMessenger, tracker, dispatch.Config{
				Render: render.Config{
					PayrollEmail: cfg.PayrollEmail,
					CCEmail:      cfg.PayrollCCEmail,
					ConfirmEmoji: cfg.ConfirmEmoji,
				},
				InlineThreshold: cfg.InlineThreshold,
			}, sugar)

			if channel == "" {
				channel = cfg.DefaultChannel
			}

			report := dispatcher.Process(context.Background(), rows, channel)
			fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "path to the payroll CSV")
	cmd.Flags().StringVarP(&channel, "channel", "c", "", "channel for the delivery report (defaults to DEFAULT_CHANNEL)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
