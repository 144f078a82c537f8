package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	schedulercmd "github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/cmd/scheduler"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/platform/config"
)

func main() {
	cfg, err := schedulercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[SCHEDULER] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code, err := schedulercmd.Run(ctx, cfg)
	stop()
	if err != nil {
		config.Exitf("run scheduler: %v", err)
	}
	os.Exit(code)
}
