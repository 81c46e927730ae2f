// topotool builds welded terrain topologies from polygon feature files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/forge-topology/internal/config"
	"github.com/Faultbox/forge-topology/internal/logger"
	"github.com/Faultbox/forge-topology/internal/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "build", "b":
		err = cmdBuild(args, false)
	case "sphere", "bs":
		err = cmdBuild(args, true)
	case "dump":
		err = cmdDump(args)
	case "init-config":
		err = cmdInitConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`topotool - terrain topology builder

Usage:
  topotool <command> [options] <file...>

Commands:
  build <file...>          Weld polygons and print a summary per file
  sphere <file...>         Like build, plus the bounding sphere
  dump <file>              Print the full vertex and index arrays
  init-config [path]       Write the default config file

Options:
  -config <path>           Config file (default ./topotool.yaml)
  -format <fmt>            Input format: auto, wkt, geojson, ewkb
  -workers <n>             Files built concurrently
  -o <fmt>                 Output format: text or yaml
  -debug                   Enable debug logging
  -log <path>              Also write logs to a rotating file

Examples:
  topotool build tiles/*.wkt
  topotool sphere -o yaml tile.geojson
  topotool dump -format ewkb tile.txt`)
}

// setup parses flags, loads config and starts logging.
func setup(name string, args []string) (*config.Config, []string, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.BindFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	logger.Debug("config loaded", zap.Any("config", cfg))
	return cfg, fs.Args(), nil
}

func cmdBuild(args []string, sphere bool) error {
	name := "build"
	if sphere {
		name = "sphere"
	}
	cfg, files, err := setup(name, args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("usage: topotool %s [options] <file...>", name)
	}
	if sphere {
		cfg.Sphere.Enabled = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := pipeline.New(cfg, logger.Named("pipeline")).Run(ctx, files)
	if err != nil {
		return err
	}
	return pipeline.WriteReport(os.Stdout, results, cfg.Output.Format)
}

func cmdDump(args []string) error {
	cfg, files, err := setup("dump", args)
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return fmt.Errorf("usage: topotool dump [options] <file>")
	}

	results, err := pipeline.New(cfg, logger.Named("pipeline")).Run(context.Background(), files)
	if err != nil {
		return err
	}
	fmt.Println(results[0].Topology)
	return nil
}

func cmdInitConfig(args []string) error {
	cfg := config.Default()
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", args[0])
		return nil
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Wrote config to %s\n", config.ConfigDir())
	return nil
}
