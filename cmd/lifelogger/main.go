package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/khchen/lifelogger/commands"
)

var cli = []commands.Command{
	&commands.ServeCmd,
	&commands.CheckCmd,
	&commands.SimulateTextCmd,
	&commands.SimulateImageCmd,
	&commands.VersionCmd,
}

var options = commands.Options{
	Config: "",
	Debug:  false,
}

func main() {
	flag.StringVar(&options.Config, "config", options.Config, "(optional) YAML configuration file")
	flag.BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	if args[0] == "help" {
		help(args[1:])
		return
	}

	cmd := find(args[0])
	if cmd == nil {
		fmt.Printf("\nInvalid command '%s'\n\n", args[0])
		usage()
		os.Exit(1)
	}

	flagset := cmd.FlagSet()
	if err := flagset.Parse(args[1:]); err != nil {
		fmt.Printf("\nError parsing command line: %v\n\n", err)
		os.Exit(1)
	}

	if err := cmd.Execute(context.Background(), &options); err != nil {
		log.Fatalf("ERROR: %v", err)
	}
}

func find(name string) commands.Command {
	for _, c := range cli {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

func usage() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] <command> [options]\n", commands.APP)
	fmt.Println()
	fmt.Println("  Commands:")
	fmt.Println("    help          Displays this message. For help on a specific command use 'help <command>'")

	for _, c := range cli {
		fmt.Printf("    %-13s %s\n", c.Name(), c.Description())
	}

	fmt.Println()
}

func help(args []string) {
	if len(args) == 0 {
		usage()
		return
	}

	if cmd := find(args[0]); cmd != nil {
		cmd.Help()
		return
	}

	fmt.Printf("\nInvalid command '%s'\n\n", args[0])
	usage()
}
