package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/keenanlab/scopecache/metrics"
)

// ServeCmd runs the workload headless and exposes metrics and debug
// endpoints over HTTP.
type ServeCmd struct {
	Config  string `help:"Path to config file." type:"path"`
	Addr    string `help:"Listen address; overrides the config file."`
	Verbose bool   `help:"Verbose logging." short:"v"`
}

// Run executes the serve command.
func (c *ServeCmd) Run() error {
	cfg, logger, err := loadConfig(c.Config, c.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if c.Addr != "" {
		cfg.Serve.Addr = c.Addr
	}

	col := metrics.New()
	w := newWorkload(cfg.Demo, col)
	w.start()
	defer w.stop()

	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/debug/scopes", func(rw http.ResponseWriter, req *http.Request) {
		writeJSON(rw, map[string]any{
			"attached": w.reg.IDs(),
			"leaks":    w.mon.Leaks(),
		})
	})
	r.Get("/debug/store", func(rw http.ResponseWriter, req *http.Request) {
		writeJSON(rw, map[string]any{
			"name":    w.store.Name(),
			"entries": w.store.Len(),
			"keys":    w.store.Keys(),
		})
	})

	srv := &http.Server{
		Addr:    cfg.Serve.Addr,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Serve.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func writeJSON(rw http.ResponseWriter, v any) {
	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)
	}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			start := time.Now()
			next.ServeHTTP(rw, req)
			logger.Debug("request",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Duration("elapsed", time.Since(start)),
			)
		})
	}
}
