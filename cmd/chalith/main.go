// Package main starts the Chalith simulation component process lifecycle.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	chalithcmd "github.com/simcesplatform/chalith-component/internal/cmd/chalith"
)

func main() {
	cfg, err := chalithcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[CHALITH] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := chalithcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("component stopped: %v", err)
	}
}
