package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/abaddouh/fakeimg/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewCLI().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
