// Package main generates the game review site from the local catalog and
// IGDB metadata.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	generatecmd "github.com/louisbranch/game-reviews/internal/cmd/generate"
	"github.com/louisbranch/game-reviews/internal/platform/config"
)

func main() {
	cfg, err := generatecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[GENERATE] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := generatecmd.Run(ctx, cfg, os.Stdout); err != nil {
		config.Exitf("generate: %v", err)
	}
}
