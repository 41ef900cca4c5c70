package commands

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const APP = "lifelogger"
const VERSION = "v0.1.0"

// Options are the global command line options, shared by all commands.
type Options struct {
	Config string
	Debug  bool
}

// Command is the interface implemented by the lifelogger subcommands.
type Command interface {
	Name() string
	Description() string
	Usage() string
	Help()
	FlagSet() *flag.FlagSet
	Execute(ctx context.Context, options *Options) error
}

func helpOptions(flagset *flag.FlagSet) {
	fmt.Println("  Options:")
	flagset.VisitAll(func(f *flag.Flag) {
		fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
	})
}

// initialiseLogging configures the default slog logger. --debug overrides
// the configured level.
func initialiseLogging(level string, debug bool) {
	v := slog.LevelInfo

	switch strings.ToUpper(level) {
	case "DEBUG":
		v = slog.LevelDebug
	case "INFO":
		v = slog.LevelInfo
	case "WARN", "WARNING":
		v = slog.LevelWarn
	case "ERROR":
		v = slog.LevelError
	}

	if debug {
		v = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: v})

	slog.SetDefault(slog.New(handler))
}
