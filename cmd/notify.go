package cmd

import (
	"context"
	"log"
	"time"

	"github.com/frahmantamala/task-tracker/internal/notification"
	"github.com/spf13/cobra"
)

var notifyTo string

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a test admin request notice",
	Long:  `Render the admin request notice and deliver it through the configured sender.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		logger := initLogger(cfg)

		renderer, err := notification.NewRenderer(cfg.Server.BaseURL)
		if err != nil {
			log.Fatalf("failed to load templates: %v", err)
		}

		to := notifyTo
		if to == "" {
			to = cfg.Notification.AdminMailbox
		}
		reason := "Delivery check from the notify command"
		msg, err := renderer.AdminNotice(cfg.Notification.From, to, 0, "Notification Check", cfg.Notification.From, &reason, time.Now())
		if err != nil {
			log.Fatalf("failed to render message: %v", err)
		}

		timeout := cfg.Notification.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := newSender(cfg, logger).Send(ctx, msg); err != nil {
			log.Fatalf("failed to send message: %v", err)
		}
		logger.Info("test notification sent", "to", to, "enabled", cfg.Notification.Enabled)
	},
}

func init() {
	notifyCmd.Flags().StringVar(&notifyTo, "to", "", "recipient, defaults to the admin mailbox")
}
