package main

import (
	"errors"
	"os"

	"github.com/build-flow-labs/apiscore/internal/cli"
)

const version = "1.0.0"

func main() {
	cli.RootCmd.Version = version
	if err := cli.RootCmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
