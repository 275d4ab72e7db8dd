// Command shieldcalc is the command-line shield booster calculator.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newApp(os.Stdout, os.Stderr).execute(ctx, nil); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			cancel()
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}
