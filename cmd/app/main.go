package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"ZScout/internal/di"
	"ZScout/pkg/config"
	applogger "ZScout/pkg/logger"
	"ZScout/pkg/server"
)

const usage = `usage: zscout [-config path] <command> [args]

commands:
  migrate            create the database schema
  seed <file>        load a symbol list into the registry
  analyze            run one analysis pass over the registry
  screen [-max-z z]  print ranked buy candidates
  run                migrate, analyze, then screen
  serve              expose results over HTTP until interrupted
`

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "app initialization failed: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := dispatch(context.Background(), app, flag.Args()); err != nil {
		app.Logger().Error("command failed", applogger.String("command", flag.Arg(0)), applogger.Error(err))
		fmt.Fprintf(os.Stderr, "%s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}
}

// loadConfig reads the config file with environment overrides, falling back
// to built-in defaults when the file does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.Default()
	}
	return config.LoadWithEnv(path)
}

func dispatch(ctx context.Context, app *server.App, args []string) error {
	switch args[0] {
	case "migrate":
		return app.Migrate(ctx)

	case "seed":
		if len(args) < 2 {
			return fmt.Errorf("seed requires a symbol file path")
		}
		if err := app.Migrate(ctx); err != nil {
			return err
		}
		inserted, err := app.Seed(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("seeded %d new symbols\n", inserted)
		return nil

	case "analyze":
		if err := app.Migrate(ctx); err != nil {
			return err
		}
		summary, err := app.Analyze(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("processed %d symbols: %d normal, %d abnormal, %d failed\n",
			summary.Processed, summary.Normal, summary.Abnormal, summary.Failed)
		return nil

	case "screen":
		fs := flag.NewFlagSet("screen", flag.ExitOnError)
		maxZ := fs.Float64("max-z", 0, "z-score threshold override")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		var override *float64
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "max-z" {
				override = maxZ
			}
		})
		return app.Screen(ctx, os.Stdout, override)

	case "run":
		if err := app.Migrate(ctx); err != nil {
			return err
		}
		summary, err := app.Analyze(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("processed %d symbols: %d normal, %d abnormal, %d failed\n\n",
			summary.Processed, summary.Normal, summary.Abnormal, summary.Failed)
		return app.Screen(ctx, os.Stdout, nil)

	case "serve":
		if err := app.Migrate(ctx); err != nil {
			return err
		}
		return app.Serve(ctx)

	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}
