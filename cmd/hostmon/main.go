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
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		var logged *loggedError
		if !errors.As(err, &logged) {
			fmt.Fprintf(os.Stderr, "hostmon: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

// loggedError marks an error that has already been written to the log.
type loggedError struct{ error }

func (e *loggedError) Unwrap() error { return e.error }
