package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/compozy/tagrelease/cmd"
	"github.com/compozy/tagrelease/internal/domain"
)

// Exit codes.
const (
	exitOK       = 0
	exitAborted  = 1
	exitInternal = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := cmd.InitCommands()
	if err == nil {
		err = cmd.ExecuteContext(ctx)
	}
	return report(os.Stderr, err)
}

// report prints err and returns the exit code. Aborts print only their
// message; internal errors also print the cause and stack.
func report(w io.Writer, err error) int {
	if err == nil {
		return exitOK
	}
	if domain.IsAbort(err) {
		fmt.Fprintln(w, err.Error())
		return exitAborted
	}
	var internal *domain.InternalError
	if errors.As(err, &internal) {
		if msg := err.Error(); msg != internal.Error() {
			fmt.Fprintln(w, msg)
		}
		fmt.Fprintf(w, "%+v\n", internal)
		return exitInternal
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return exitInternal
}
