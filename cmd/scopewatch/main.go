// Command scopewatch observes a scoped resource cache under a simulated
// workload: a live dashboard of loads, attachments and leaks, or an HTTP
// server exposing the same numbers to Prometheus.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/keenanlab/scopecache/internal/config"
	"github.com/keenanlab/scopecache/scope"
	"github.com/keenanlab/scopecache/store"
)

var version = "dev"

// CLI is the top-level command structure for scopewatch.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Demo    DemoCmd          `cmd:"" help:"Run a simulated workload with a live dashboard."`
	Serve   ServeCmd         `cmd:"" help:"Run the workload and expose metrics and debug endpoints over HTTP."`
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("scopewatch"),
		kong.Description("Observe a scoped resource cache: loads, scope attachments and leaks."),
		kong.Vars{"version": version},
	)
	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "scopewatch: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and wires the library loggers.
func loadConfig(path string, verbose bool) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}

	var logger *zap.Logger
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return cfg, nil, fmt.Errorf("init logger: %w", err)
	}
	store.SetLogger(logger.Named("store"))
	scope.SetLogger(logger.Named("scope"))
	return cfg, logger, nil
}
