// Command tether resolves configuration sources from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Azhovan/tether/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.New(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
