package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/moodset/internal/server"
	"github.com/desertthunder/moodset/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the webhook and metrics server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("%w: --port must be between 0 and 65535", shared.ErrInvalidFlag)
	}

	r.logger.Info("starting server", "addr", cfg.Addr())
	return server.New(cfg.Addr(), r.logger).ListenAndServe(ctx)
}
