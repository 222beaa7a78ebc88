package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/shinyvision/sniffctx/internal/check"
	"github.com/shinyvision/sniffctx/internal/config"
	"github.com/shinyvision/sniffctx/internal/server"
	"github.com/shinyvision/sniffctx/internal/sniff"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/urfave/cli/v2"
)

var version = "0.1.0"

// loadConfigWithOverrides loads the project configuration and applies the
// command line overrides.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root, err := filepath.Abs(c.String("root"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path %q: %w", c.String("root"), err)
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	if include := c.StringSlice("include"); len(include) > 0 {
		cfg.Files.Include = include
	}
	if exclude := c.StringSlice("exclude"); len(exclude) > 0 {
		cfg.Files.Exclude = append(cfg.Files.Exclude, exclude...)
	}
	if disabled := c.StringSlice("disable"); len(disabled) > 0 {
		cfg.Sniffs.Disabled = append(cfg.Sniffs.Disabled, disabled...)
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	return cfg, cfg.Validate()
}

func configureLogging(c *cli.Context) {
	var path *string
	if p := c.String("log-file"); p != "" {
		path = &p
	}
	commonlog.Configure(c.Int("verbose"), path)
}

func runCheck(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return cli.Exit(err, 2)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := check.New(cfg)
	files, err := checker.Discover(c.Args().Slice()...)
	if err != nil {
		return cli.Exit(err, 2)
	}
	results, err := checker.Run(ctx, files)
	if err != nil {
		return cli.Exit(err, 2)
	}

	sum, err := checker.Write(c.App.Writer, results)
	if err != nil {
		return err
	}
	if sum.Failed() {
		return cli.Exit(fmt.Sprintf("%d files: %d errors, %d warnings, %d failures",
			sum.Files, sum.Errors, sum.Warnings, sum.Failures), 1)
	}
	return nil
}

func runLSP(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return cli.Exit(err, 2)
	}
	server.NewServer(cfg).Run()
	return nil
}

func main() {
	app := &cli.App{
		Name:    "sniffctx",
		Usage:   "PHP namespace and import context checks",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root holding " + config.FileName,
				Value:   ".",
			},
			&cli.IntFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log verbosity (0 quiet, 1 info, 2 debug)",
				Value:   1,
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file instead of stderr",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable the position cache",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Check files matching glob patterns (replaces the configured list)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip files matching glob patterns",
			},
			&cli.StringSliceFlag{
				Name:  "disable",
				Usage: fmt.Sprintf("Disable a sniff by code %v", sniff.Codes()),
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Files checked in parallel",
			},
		},
		Before: func(c *cli.Context) error {
			configureLogging(c)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Run the sniffs over files and directories",
				ArgsUsage: "[path...]",
				Action:    runCheck,
			},
			{
				Name:   "lsp",
				Usage:  "Serve diagnostics and hover over stdio",
				Action: runLSP,
			},
		},
		DefaultCommand: "check",
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
