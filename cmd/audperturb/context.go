// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ik5/audperturb/config"
	"github.com/ik5/audperturb/logging"
	"github.com/ik5/audperturb/metrics"
)

type commandContext struct {
	configFlag *string
	logLevel   *string
	stderr     io.Writer

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	server   *http.Server
}

func newCommandContext(configFlag, logLevel *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		logLevel:   logLevel,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevel != nil && *c.logLevel != "" {
			cfg.Logging.Level = *c.logLevel
		}

		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: c.stderr,
		})
		if err != nil {
			c.configErr = err
			return
		}

		c.config = cfg
		c.logger = logger.With(slog.String("run_id", uuid.NewString()))
		c.registry = prometheus.NewRegistry()
		c.metrics = metrics.New(c.registry)
	})
	return c.config, c.configErr
}

// startMetrics serves the registry when metrics are enabled.
func (c *commandContext) startMetrics() {
	if c.config == nil || !c.config.Metrics.Enabled || c.server != nil {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
	c.server = &http.Server{
		Addr:              c.config.Metrics.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	c.logger.Info("serving metrics", slog.String("address", c.server.Addr))
	go func() {
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()
}

func (c *commandContext) stopMetrics() error {
	if c.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("stop metrics server: %w", err)
	}
	c.server = nil
	return nil
}
