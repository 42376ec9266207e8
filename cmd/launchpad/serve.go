package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/kbukum/launchpad/bootstrap"
	"github.com/kbukum/launchpad/config"
	"github.com/kbukum/launchpad/errors"
	"github.com/kbukum/launchpad/logger"
	"github.com/kbukum/launchpad/process"
	"github.com/kbukum/launchpad/proxy"
	"github.com/kbukum/launchpad/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the service (default command)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load(serviceName, loaderOptions()...)
	if err != nil {
		return err
	}
	logger.Init(&settings.Logging)
	log := logger.GetGlobalLogger()

	handler, err := appHandler(settings, log)
	if err != nil {
		return err
	}

	opts := []bootstrap.Option{
		bootstrap.WithLogger(log),
		bootstrap.WithHandler(handler),
	}
	child, err := upstreamProcess(settings, log)
	if err != nil {
		return err
	}
	if child != nil {
		opts = append(opts, bootstrap.WithComponent(child))
	}

	app, err := bootstrap.New(settings, opts...)
	if err != nil {
		return err
	}
	if p, ok := handler.(*proxy.Proxy); ok {
		app.Summary.AddInfrastructure(p.Describe())
	}
	return app.Run(cmd.Context())
}

// appHandler returns the upstream proxy when one is configured, otherwise
// the built-in informational application.
func appHandler(settings *config.Settings, log *logger.Logger) (http.Handler, error) {
	if settings.Upstream.Enabled() {
		p, err := proxy.New(settings.Upstream, log)
		if err != nil {
			return nil, errors.Configuration("upstream", err.Error()).WithCause(err)
		}
		return p, nil
	}
	return builtinApp(settings), nil
}

// upstreamProcess returns the supervised application process, or nil when
// upstream.command is empty. It is started with the other components, after
// the privilege drop.
func upstreamProcess(settings *config.Settings, log *logger.Logger) (*process.Process, error) {
	if !settings.Upstream.Process.Enabled() {
		return nil, nil
	}
	p, err := process.New(settings.Upstream.ProcessConfig(), log)
	if err != nil {
		return nil, errors.Configuration("upstream.command", err.Error()).WithCause(err)
	}
	return p, nil
}

func builtinApp(settings *config.Settings) http.Handler {
	engine := gin.New()
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     settings.Name,
			"version":     version.Effective(settings.Version),
			"environment": settings.Environment,
			"health":      settings.Server.HealthPath,
		})
	})
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "no application is configured for " + c.Request.URL.Path,
		})
	})
	return engine
}
