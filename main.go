package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/podcheck/podcheck/internal/adapters/inbound/cli"
	"github.com/podcheck/podcheck/internal/domain"
)

func main() {
	if err := cli.Execute(); err != nil {
		// Failed checks were already reported on stdout.
		if !errors.Is(err, domain.ErrChecksFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
