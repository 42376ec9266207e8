package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbukum/launchpad/config"
	"github.com/kbukum/launchpad/errors"
	"github.com/kbukum/launchpad/logger"
)

const serviceName = "launchpad"

var (
	configFile string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "Supervised network service entrypoint",
	Long: `Resolve configuration, drop root privileges, bind the service port and
serve the application behind an unauthenticated liveness probe.

The listening port is read once from $PORT (name configurable) and falls
back to server.default_port when the variable is unset or empty.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config.yml (default: searched)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file (default: searched)")

	rootCmd.AddCommand(serveCmd, healthcheckCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error("launchpad exited with error", logger.Fields(
			logger.FieldError, err.Error(),
			"exit_code", errors.ExitCode(err),
		))
		os.Exit(errors.ExitCode(err))
	}
}

func loaderOptions() []config.LoaderOption {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	return opts
}
