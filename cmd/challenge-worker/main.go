// Command challenge-worker periodically fails active challenges whose end date has passed.
package main

import (
	"context"                            // Shutdown handling
	"finance_tracker/internal/amqp"      // Notification publishing
	"finance_tracker/internal/challenge" // Lifecycle service
	"finance_tracker/internal/config"    // Configuration
	"finance_tracker/internal/db"        // Database connection
	"finance_tracker/internal/notify"    // Notification dispatch
	"finance_tracker/internal/storage"   // Repositories
	"os"                                 // Signals
	"os/signal"                          // Graceful shutdown
	"syscall"                            // SIGTERM
	"time"                               // Sweep ticker

	"github.com/sirupsen/logrus" // Structured logging
)

func main() {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logrus.Fatal(err)
	}
	cfg.SetupLogger()

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	store := storage.NewGormStore(gdb)

	var publisher notify.Publisher
	if cfg.AMQPURL != "" {
		p, err := amqp.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logrus.WithError(err).Warn("AMQP unavailable, notifications will not be published")
		} else {
			defer p.Close()
			publisher = p
		}
	}
	svc := challenge.NewService(store, notify.NewDispatcher(store, publisher))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logrus.WithField("interval", cfg.SweepEvery.String()).Info("Challenge worker started")
	sweep(ctx, svc)
	ticker := time.NewTicker(cfg.SweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logrus.Info("Challenge worker stopped")
			return
		case <-ticker.C:
			sweep(ctx, svc)
		}
	}
}

func sweep(ctx context.Context, svc *challenge.Service) {
	n, err := svc.ExpireDue(ctx, time.Now())
	if err != nil {
		logrus.WithError(err).Error("Challenge sweep failed")
		return
	}
	if n > 0 {
		logrus.WithField("expired", n).Info("Expired challenges failed")
	}
}
