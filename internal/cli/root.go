package cli

import (
	"fmt"
	"os"

	"facegreeter/internal/config"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "facegreeter",
	Short: "Greets visitors recognized on a camera feed",
	Long: `facegreeter watches a camera, detects faces in frames with motion,
labels them against a gallery of enrolled people and greets each new
visitor with a generated message and optional speech.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads .env and the environment, then applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()
	if dir, _ := cmd.Flags().GetString("gallery"); dir != "" {
		cfg.GalleryDirectory = dir
	}
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		cfg.DatabasePath = path
	}
	return cfg
}

func init() {
	rootCmd.PersistentFlags().String("gallery", "", "Gallery directory (overrides GALLERY_DIR)")
	rootCmd.PersistentFlags().String("db", "", "Visit database path (overrides DB_PATH)")
}
