package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/payops/payday-bot/internal/bot"
	"github.com/payops/payday-bot/internal/config"
	"github.com/payops/payday-bot/internal/dispatch"
	"github.com/payops/payday-bot/internal/messenger"
	"github.com/payops/payday-bot/internal/render"
	"github.com/payops/payday-bot/internal/server"
	"github.com/payops/payday-bot/internal/track"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	slackMessenger := messenger.NewSlackMessenger(cfg.SlackBotToken, cfg.Debug, sugar)

	tracker := track.NewConfirmationTracker(cfg.TrackerRetention, sugar)
	defer tracker.Stop()
	guard := track.NewFileGuard(cfg.GuardRetention, sugar)
	defer guard.Stop()

	dispatcher := dispatch.NewDispatcher(slackMessenger, tracker, dispatch.Config{
		Render: render.Config{
			PayrollEmail: cfg.PayrollEmail,
			CCEmail:      cfg.PayrollCCEmail,
			ConfirmEmoji: cfg.ConfirmEmoji,
		},
		InlineThreshold: cfg.InlineThreshold,
	}, sugar)

	service := bot.NewService(dispatcher, slackMessenger, slackMessenger, tracker, guard, bot.Config{
		DefaultChannel: cfg.DefaultChannel,
		AdminChannel:   cfg.AdminChannel,
		ConfirmEmoji:   cfg.ConfirmEmoji,
	}, sugar)

	router := server.SetupRoutes(server.NewEventService(service, cfg.SlackSigningSecret, sugar))

	sugar.Infof("Server starting on port %s", cfg.HTTPPort)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.HTTPPort), router); err != nil {
		sugar.Fatalf("Failed to start server: %v", err)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
