package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"github.com/syncfield/standup-bot/internal/audit"
	"github.com/syncfield/standup-bot/internal/config"
	"github.com/syncfield/standup-bot/internal/database"
	"github.com/syncfield/standup-bot/internal/domain/service"
	"github.com/syncfield/standup-bot/internal/handlers"
	"github.com/syncfield/standup-bot/internal/scheduler"
	"github.com/syncfield/standup-bot/internal/slackgw"
	"github.com/syncfield/standup-bot/migrator/sqlite"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found")
	}

	cfg := config.Load()

	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg.TokenSigningKey == "" {
		logrus.Fatal("TOKEN_SIGNING_KEY is required")
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize database")
	}
	defer db.Close()

	logrus.Info("running migrations")
	if err := sqlite.Migrate(db.DB()); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	slackClient := slack.New(cfg.SlackBotToken)
	gateway := slackgw.New(slackClient)

	dm := database.NewInstance(db)
	auditLogger := audit.New(dm)

	services := service.New(dm, gateway, auditLogger, service.Options{
		SigningKey:        []byte(cfg.TokenSigningKey),
		BaseURL:           cfg.BaseURL,
		TokenTTL:          cfg.TokenTTL,
		CloseOnCompletion: cfg.CloseOnCompletion,
		ReminderResend:    cfg.ReminderResend,
	})

	sched := scheduler.New(services.Lifecycle, services.Reminder, cfg.MaterializeSweepEvery, cfg.ReminderSweepEvery)
	sched.Start()
	defer sched.Stop()

	instanceLookup := func(teamID int64, targetDate string) (int64, bool, error) {
		inst, err := dm.Instance().GetByTeamAndDate(teamID, targetDate)
		if err != nil {
			return 0, false, err
		}
		if inst == nil {
			return 0, false, nil
		}
		return inst.ID, true, nil
	}

	instanceLoader := func(instanceID int64) ([]string, string, error) {
		inst, err := services.Lifecycle.GetInstance(instanceID)
		if err != nil {
			return nil, "", err
		}
		return inst.Snapshot.Questions, inst.TargetDate, nil
	}

	slackHandler := handlers.NewSlackHandler(services.Standup, services.Answer, instanceLookup, cfg.SlackSigningSecret)
	respondHandler := handlers.NewRespondHandler(services.Token, services.Answer, instanceLoader)

	mux := http.NewServeMux()
	mux.HandleFunc("/slack/commands", slackHandler.HandleSlashCommand)
	mux.HandleFunc("/standup/respond", respondHandler.Handle)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		logrus.WithField("port", cfg.Port).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("server shutdown failed")
	}
}
