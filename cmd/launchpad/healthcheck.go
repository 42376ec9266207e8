package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/launchpad/config"
	"github.com/kbukum/launchpad/errors"
	"github.com/kbukum/launchpad/health"
	"github.com/kbukum/launchpad/logger"
)

var (
	healthURL     string
	healthTimeout time.Duration
	healthWatch   bool
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Probe the liveness endpoint once (or keep watching it)",
	Long: `Probe the liveness endpoint and exit 0 when it reports up, 1 otherwise.
Suitable as a container HEALTHCHECK command in images without curl.

With --watch the endpoint is polled using the configured health policy
(start_period, interval, timeout, retries) and verdict changes are logged.`,
	RunE: runHealthcheck,
}

func init() {
	healthcheckCmd.Flags().StringVar(&healthURL, "url", "", "Liveness URL (default: derived from the resolved port)")
	healthcheckCmd.Flags().DurationVar(&healthTimeout, "timeout", 0, "Per-probe timeout (default: health.timeout)")
	healthcheckCmd.Flags().BoolVar(&healthWatch, "watch", false, "Keep probing with the configured policy")
}

func runHealthcheck(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load(serviceName, loaderOptions()...)
	if err != nil {
		return err
	}
	logger.Init(&settings.Logging)
	log := logger.WithComponent("healthcheck")

	cfg, err := config.Resolve(settings, nil)
	if err != nil {
		return err
	}
	policy := cfg.HealthPolicy()
	if healthTimeout > 0 {
		policy.Timeout = healthTimeout
	}

	url := healthURL
	if url == "" {
		url = probeURL(cfg, settings.Server.HealthPath, settings.Server.HealthPort)
	}
	prober := health.NewProber(url, policy.Timeout)

	if !healthWatch {
		res := prober.Probe(cmd.Context())
		if !res.Up() {
			if res.Err == nil {
				return errors.HealthCheckFailed(url, nil)
			}
			return res.Err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "up (%s in %s)\n", url, res.Latency.Round(time.Millisecond))
		return nil
	}

	log.Info("watching liveness", logger.Fields(
		"url", url,
		"interval", policy.Interval.String(),
		"timeout", policy.Timeout.String(),
		"start_period", policy.StartPeriod.String(),
		"retries", policy.Retries,
	))
	monitor := health.NewMonitor(prober.Check, policy, health.WithLogger(log))
	if err := monitor.Run(cmd.Context()); err != nil && !stderrors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// probeURL targets loopback when the service binds every interface.
func probeURL(cfg config.ServiceConfig, path string, healthPort int) string {
	host := cfg.BindHost()
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "127.0.0.1"
	}
	port := cfg.BindPort()
	if healthPort > 0 {
		port = healthPort
	}
	if path == "" {
		path = "/health"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + path
}
