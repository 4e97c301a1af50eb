// trapi builds tabular features from a YAML block pipeline and runs a
// cross-validated baseline on them.
//
// Usage:
//
//	trapi features --train train.csv --test test.csv --config blocks.yaml --target y --out features/
//	trapi cv --train features/train.csv --test features/test.csv --target y --folds 5 --out cv/
//
// Settings not given as flags are read from TRAPI_* environment variables.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/KenkenGoda/trapi/pkg/errors"
	"github.com/KenkenGoda/trapi/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, env *Env, args []string, stdout io.Writer) error
}

var commands = []command{
	{"features", "build train/test feature files from a block pipeline", runFeatures},
	{"cv", "cross-validate a ridge baseline on a feature file", runCV},
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	env, err := LoadEnv()
	if err != nil {
		return err
	}
	if err := log.SetupLogger(env.LogLevel, env.LogJSON); err != nil {
		return err
	}

	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stdout)
		return nil
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(ctx, env, args[1:], stdout)
		}
	}
	printUsage(stdout)
	return errors.NewValidationError("command", "unknown command", args[0])
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: trapi <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'trapi <command> --help' for the flags of a command.")
}

// parseFlags parses args and prints the defaults to w on --help.
func parseFlags(fs *pflag.FlagSet, args []string, w io.Writer) error {
	fs.SetOutput(w)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return errors.NewValidationError("args", "unexpected argument", fs.Arg(0))
	}
	return nil
}

func requireFlag(name, value string) error {
	if value == "" {
		return errors.NewValidationError(name, "flag is required", value)
	}
	return nil
}
