package cli

import (
	"context"
	"errors"
)

type contextKey struct{}

// ErrNoCLI means a command ran without the root command's setup
var ErrNoCLI = errors.New("cli not initialized")

// WithCLI stores c in ctx for subcommands
func WithCLI(ctx context.Context, c *CLI) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// GetCLIFromContext returns the CLI placed by the root command (or a test)
func GetCLIFromContext(ctx context.Context) (*CLI, error) {
	if ctx == nil {
		return nil, ErrNoCLI
	}
	c, ok := ctx.Value(contextKey{}).(*CLI)
	if !ok || c == nil {
		return nil, ErrNoCLI
	}
	return c, nil
}
