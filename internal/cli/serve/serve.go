// Package serve holds the cli command that runs the JSON API
package serve

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tandem/internal/auth"
	"github.com/thenoetrevino/tandem/internal/cli"
	"github.com/thenoetrevino/tandem/internal/httpapi"
	"github.com/thenoetrevino/tandem/internal/idempotency"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the JSON API until interrupted, then drain in-flight requests.

Idempotent task creation (the Idempotency-Key header) is enabled when
redis.addr is configured.

Examples:
  TANDEM_JWT_SECRET=change-me tandem serve
  tandem serve --addr :9090 --config ./tandem.yaml
`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (overrides server.addr)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}

	cfg := cliInstance.Config.Server
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}

	srv, cleanup, err := NewServer(ctx, cliInstance)
	if err != nil {
		return formatter.Fail(err)
	}
	defer cleanup()

	if err := srv.ListenAndServe(ctx, cfg); err != nil {
		return formatter.Fail(err)
	}
	return nil
}

// NewServer wires the API server from the CLI's app and config. The
// returned cleanup closes the Redis client, if one was opened.
func NewServer(ctx context.Context, c *cli.CLI) (*httpapi.Server, func(), error) {
	cfg := c.Config
	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, nil, &cli.CodedError{Code: cli.ExitDataErr, Err: fmt.Errorf("auth config: %w", err)}
	}

	if cfg.Redis.Addr == "" {
		slog.Info("redis.addr not set, idempotent task creation disabled")
		return httpapi.NewServer(c.App, tokens), func() {}, nil
	}

	rc := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
	}
	cleanup := func() {
		if err := rc.Close(); err != nil {
			slog.Error("failed to close redis client", "error", err)
		}
	}

	deduper := idempotency.NewRedisDeduper(rc, cfg.Redis.IdempotencyTTL)
	return httpapi.NewServer(c.App, tokens, httpapi.WithIdempotency(deduper)), cleanup, nil
}
