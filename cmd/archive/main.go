package main

import (
	"context"
	"flag"
	"os"

	archivecmd "github.com/simcesplatform/chalith-component/internal/cmd/archive"
	"github.com/simcesplatform/chalith-component/internal/platform/config"
)

func main() {
	cfg, err := archivecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	if err := archivecmd.Run(context.Background(), cfg, os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
