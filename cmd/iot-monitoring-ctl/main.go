package main

import (
	"os"

	"github.com/prashant-rs/iot-monitoring/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
