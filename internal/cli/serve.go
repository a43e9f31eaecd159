package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"facegreeter/internal/app"
	"facegreeter/internal/logger"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "Listen port (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Port = port
	}

	log := logger.NewLogger(cfg)
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to start: %v", err)
		return err
	}
	defer application.Close()

	err = application.Run(ctx, func() {
		daemon.SdNotify(false, daemon.SdNotifyReady)
	})
	daemon.SdNotify(false, daemon.SdNotifyStopping)
	if err != nil {
		log.Error("Server stopped: %v", err)
	}
	return err
}
