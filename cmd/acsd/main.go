package main

import (
	"errors"
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
		fmt.Fprintf(os.Stderr, "acsd: config: %v\n", err)
		os.Exit(1)
	}

	if err := app.RunACS(); err != nil {
		fmt.Fprintf(os.Stderr, "acsd: %v\n", err)
		var initErr *app.InitError
		if errors.As(err, &initErr) {
			os.Exit(initErr.Code)
		}
		os.Exit(1)
	}
}
