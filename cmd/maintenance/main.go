// Package main provides maintenance utilities for a progression store.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/glimmerhq/progression/internal/cmd/maintenance"
	platformcmd "github.com/glimmerhq/progression/internal/platform/cmd"
	"github.com/glimmerhq/progression/internal/platform/config"
)

func main() {
	log.SetPrefix("[MAINTENANCE] ")
	log.SetFlags(log.LstdFlags)

	cfg, err := maintenance.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	err = platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceMaintenance, func(ctx context.Context) error {
		return maintenance.Run(ctx, cfg, os.Stdout, os.Stderr)
	})
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}
