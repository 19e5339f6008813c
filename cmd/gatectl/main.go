package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/gatekit/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, cli.ErrDenied):
		stop()
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "gatectl:", err)
		stop()
		os.Exit(1)
	}
}
