// Package main provides a CLI for seeding a local progression store with
// deterministic demo activity.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/glimmerhq/progression/internal/cmd/seed"
	platformcmd "github.com/glimmerhq/progression/internal/platform/cmd"
	"github.com/glimmerhq/progression/internal/platform/config"
)

func main() {
	log.SetPrefix("[SEED] ")
	log.SetFlags(log.LstdFlags)

	cfg, err := seed.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceSeed, func(ctx context.Context) error {
		return seed.Run(ctx, cfg, os.Stdout, os.Stderr)
	})
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}
