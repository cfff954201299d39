package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/door-guard/internal/service/guard"
	"github.com/oshokin/door-guard/internal/version"
)

var (
	// configPath to the settings file (YAML, or CircuitPython settings.toml).
	configPath string
	// scenarioPath overrides the sim scenario from the settings.
	scenarioPath string
	// statusAddress overrides the status service listen address.
	statusAddress string

	// rootCmd runs the door controller.
	rootCmd = &cobra.Command{
		Use:   "door-guard",
		Short: "Run the face recognition door lock controller.",
		Long: `Polls the face sensor and opens the door for registered people.

Unrecognized faces start an intruder alert and a Telegram notification.
Swipe gestures switch the USB relay on for a short window.
Settings come from the configuration file and the environment
(CIRCUITPY_WIFI_SSID, CIRCUITPY_WIFI_PASSWORD, botToken, chat_id).`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &guard.Options{
				ConfigPath:    configPath,
				ScenarioPath:  scenarioPath,
				StatusAddress: statusAddress,
			}

			return guard.Run(ctx, options)
		},
	}
)

// Execute runs the door-guard CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(newStatusCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to settings file")
	rootCmd.Flags().StringVar(&scenarioPath, "scenario", "", "sim scenario file")
	rootCmd.Flags().StringVar(&statusAddress, "status-addr", "", "status service listen address, e.g. :50070")
}
