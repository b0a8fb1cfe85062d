package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"centsible/internal/client"
	"centsible/internal/config"
	"centsible/internal/events"
	"centsible/internal/logger"
	"centsible/internal/notify"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Worker error: %v", err)
	}
}

func run() error {
	log := logger.Named("worker")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.PipelineAPIKey == "" {
		return errors.New("PIPELINE_API_KEY is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := client.NewPipelineClient(cfg.APIURL, cfg.PipelineAPIKey, &http.Client{Timeout: time.Minute})

	scheduler := cron.New(cron.WithLocation(time.UTC))
	if _, err := scheduler.AddFunc(cfg.SnapshotSchedule, snapshotJob(ctx, pipeline, time.Now)); err != nil {
		return fmt.Errorf("invalid SNAPSHOT_SCHEDULE %q: %w", cfg.SnapshotSchedule, err)
	}
	if _, err := scheduler.AddFunc(cfg.ReminderSchedule, reminderJob(ctx, pipeline, time.Now)); err != nil {
		return fmt.Errorf("invalid REMINDER_SCHEDULE %q: %w", cfg.ReminderSchedule, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scheduler.Start()
		log.Infow("Scheduler started",
			"snapshots", cfg.SnapshotSchedule,
			"reminders", cfg.ReminderSchedule)
		<-ctx.Done()
		<-scheduler.Stop().Done()
		log.Info("Scheduler stopped")
		return nil
	})

	if cfg.AMQPURL != "" {
		consumer, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return fmt.Errorf("failed to connect to message broker: %w", err)
		}
		defer consumer.Close()

		var notifier notify.Notifier = notify.LogNotifier{}
		if cfg.MailEnabled() {
			notifier = notify.NewMailer(notify.SMTPConfig{
				Host:     cfg.SMTPHost,
				Port:     cfg.SMTPPort,
				User:     cfg.SMTPUser,
				Password: cfg.SMTPPassword,
				From:     cfg.MailFrom,
			})
		} else {
			log.Warn("SMTP_HOST not set, reminders will only be logged")
		}

		g.Go(func() error {
			err := consumer.ConsumeBillReminders(ctx, notifier.NotifyBillReminder)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		log.Warn("AMQP_URL not set, bill reminder consumer disabled")
	}

	return g.Wait()
}

type pipelineRunner interface {
	ComputeSnapshots(ctx context.Context, recordedAt time.Time) (int, error)
	SendReminders(ctx context.Context, asOf time.Time) (int, error)
}

func snapshotJob(ctx context.Context, p pipelineRunner, now func() time.Time) func() {
	return func() {
		log := logger.Named("worker")
		start := now()
		n, err := p.ComputeSnapshots(ctx, start)
		if err != nil {
			log.Errorw("Snapshot run failed", "error", err)
			return
		}
		log.Infow("Snapshot run completed", "snapshots_recorded", n, "duration", time.Since(start).String())
	}
}

func reminderJob(ctx context.Context, p pipelineRunner, now func() time.Time) func() {
	return func() {
		log := logger.Named("worker")
		n, err := p.SendReminders(ctx, now())
		if err != nil {
			log.Errorw("Reminder run failed", "error", err)
			return
		}
		log.Infow("Reminder run completed", "reminders_sent", n)
	}
}
