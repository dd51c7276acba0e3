package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/nyx-sat/acsd/internal/app"
	"github.com/nyx-sat/acsd/internal/sysconfig"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a KEY=VALUE deployment config file")
	pflag.Parse()

	if err := sysconfig.InitGlobal(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "groundpanel: config: %v\n", err)
		os.Exit(1)
	}

	if err := app.RunGroundPanel(); err != nil {
		fmt.Fprintf(os.Stderr, "groundpanel: %v\n", err)
		os.Exit(2)
	}
}
