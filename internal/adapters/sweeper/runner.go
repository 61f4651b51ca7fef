// Package sweeper provides adapters for running the expired-session sweep.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/safemesh/mesh-console/config"
	"github.com/safemesh/mesh-console/internal/core"
	"github.com/safemesh/mesh-console/internal/service"
)

// Runner provides a simple adapter to run the sweep loop.
type Runner struct {
	sweeper *service.SweeperService
	logger  *slog.Logger
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Sessions core.SessionSweeper
	Config   config.SweeperConfig
	Metrics  core.ConsoleMetrics
	Logger   *slog.Logger
}

// NewRunner creates a new sweeper runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if err := validateRunnerOptions(&opts); err != nil {
		return nil, err
	}

	sweeper, err := service.NewSweeperService(service.SweeperServiceOptions{
		Sessions: opts.Sessions,
		Interval: opts.Config.Interval,
		Metrics:  opts.Metrics,
		Logger:   opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wire sweeper service: %w", err)
	}

	return &Runner{sweeper: sweeper, logger: opts.Logger}, nil
}

// validateRunnerOptions validates and sets defaults for RunnerOptions.
func validateRunnerOptions(opts *RunnerOptions) error {
	if opts.Sessions == nil {
		return errors.New("session registry is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return nil
}

// Run starts the sweep loop and runs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting sweeper runner")
	return r.sweeper.Run(ctx)
}
