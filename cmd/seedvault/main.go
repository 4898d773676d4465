package main

import (
	"flag"
	"fmt"
	"os"
	"seedvault/internal/di"
	"seedvault/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the YAML config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "log to console at debug-friendly formatting")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "seedvault: %s\n", err)
		os.Exit(1)
	}
}
