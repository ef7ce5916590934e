// Package main starts the touch sampler.
package main

import (
	"fmt"
	"os"

	"github.com/akamensky/argparse"
)

// flags are the command line overrides.
type flags struct {
	configPath string
	actions    string
	device     string
	source     string
	debug      bool
}

// main is the entrypoint for the touch sampler.
func main() {
	parser := argparse.NewParser("touch_sampler", "Samples touch input into per-frame action labels")
	configPath := parser.String("c", "config", &argparse.Options{Help: "YAML config file"})
	actions := parser.String("a", "actions", &argparse.Options{Help: "Action config file, overrides actions_path"})
	device := parser.String("d", "device", &argparse.Options{Help: "Input node to follow, e.g. /dev/input/event4"})
	source := parser.Selector("s", "source", []string{"adb", "local"}, &argparse.Options{Help: "Event source"})
	debug := parser.Flag("", "debug", &argparse.Options{Help: "Enable verbose debug logging"})
	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(2)
	}

	if err := run(flags{
		configPath: *configPath,
		actions:    *actions,
		device:     *device,
		source:     *source,
		debug:      *debug,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
