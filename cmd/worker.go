package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sisedoc/document-tracking/internal/core/events"
	"github.com/sisedoc/document-tracking/internal/mailer"
	"github.com/sisedoc/document-tracking/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker pools for various services",
	Long:  `Start and manage worker pools, like the credentials mail sender.`,
}

var mailWorkerCmd = &cobra.Command{
	Use:   "mail",
	Short: "Start mailer worker pool",
	Long:  `Start the mailer worker pool for delivering credentials emails`,
	Run: func(cmd *cobra.Command, args []string) {
		startMailWorker()
	},
}

var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start event bus worker",
	Long:  `Start the event bus`,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

var (
	maxWorkers   int
	jobQueueSize int
	apiURL       string
	apiKey       string
)

func startMailWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := logger.L()

	mailConfig := mailer.Config{
		APIURL:       getStringFlag(apiURL, config.Mailer.APIURL),
		APIKey:       getStringFlag(apiKey, config.Mailer.APIKey),
		FromAddress:  config.Mailer.FromAddress,
		SendTimeout:  config.Mailer.SendTimeout,
		MaxWorkers:   getIntFlag(maxWorkers, config.Mailer.MaxWorkers),
		JobQueueSize: getIntFlag(jobQueueSize, config.Mailer.JobQueueSize),
	}

	lg.Info("starting mail worker",
		"max_workers", mailConfig.MaxWorkers,
		"job_queue_size", mailConfig.JobQueueSize,
		"api_url", mailConfig.APIURL)

	client := mailer.NewClient(mailConfig, lg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lg.Info("mail worker is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	lg.Info("received signal, shutting down mail worker", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		client.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		lg.Info("mail worker pool shutdown complete")
	case <-ctx.Done():
		lg.Warn("shutdown timeout reached, forcing exit")
	}
}

func startEventWorker() {
	_, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := logger.L()

	eventBus := events.NewEventBus(lg)

	eventBus.Subscribe("test.event", func(ctx context.Context, event events.Event) error {
		lg.Info("received test event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"occurred_at", event.OccurredAt())
		return nil
	})

	lg.Info("event bus worker started. Waiting for events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lg.Info("event bus is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	lg.Info("received signal, shutting down event bus", "signal", sig)
	lg.Info("event bus shutdown complete")
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	mailWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	mailWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	mailWorkerCmd.Flags().StringVar(&apiURL, "api-url", "", "Email provider API URL (overrides config)")
	mailWorkerCmd.Flags().StringVar(&apiKey, "api-key", "", "Email provider API key (overrides config)")

	workerCmd.AddCommand(mailWorkerCmd)
	workerCmd.AddCommand(eventWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
