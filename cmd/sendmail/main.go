// Package main is the entry point for the sendmail command.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/shineum/sendmail/internal/cli"
)

func main() {
	// Cancel an in-flight submission on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigCh
		cancel()
	}()

	code := cli.New().Run(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}
