package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"ContentMachine/internal/app"
	"ContentMachine/internal/config"
	"ContentMachine/internal/domain"
	"ContentMachine/internal/logging"
	"ContentMachine/internal/progress"
	"ContentMachine/internal/usecase"
)

func main() {
	cmd := &cli.Command{
		Name:        "contentmachine",
		Usage:       "Turn developer community signals into published articles",
		Description: "Configuration is read from the YAML file named by CONTENT_MACHINE_CONFIG, then environment overrides.",
		Commands: []*cli.Command{
			runCmd(),
			scheduleCmd(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "focus", Usage: "Focus hint for sources without their own"},
		&cli.StringSliceFlag{Name: "source", Usage: "Only collect from the named configured source (repeatable)"},
	}
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Execute one run and print its progress",
		Flags: append(runFlags(),
			&cli.BoolFlag{Name: "json", Usage: "Print progress events as JSON lines"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := setup(ctx)
			if err != nil {
				return err
			}
			defer application.Close()

			req, err := runRequest(application, cmd)
			if err != nil {
				return err
			}

			run := application.Start(ctx, req)
			render := printLine
			if cmd.Bool("json") {
				render = printJSON
			}
			for ev := range run.Subscribe(ctx) {
				render(os.Stdout, ev)
			}

			res, err := run.Wait()
			if err != nil {
				return fmt.Errorf("run %s failed: %w", run.ID, err)
			}
			if !cmd.Bool("json") {
				for _, rec := range res.Published {
					fmt.Fprintf(os.Stdout, "published %s (%s)\n", rec.Slug, rec.ArtifactID)
				}
			}
			return nil
		},
	}
}

func scheduleCmd() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "Start a run on every interval until interrupted",
		Flags: append(runFlags(),
			&cli.DurationFlag{Name: "interval", Usage: "Override scheduler.interval"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := setup(ctx, func(cfg *config.Config) {
				if d := cmd.Duration("interval"); d > 0 {
					cfg.Scheduler.Interval = d
				}
			})
			if err != nil {
				return err
			}
			defer application.Close()

			req, err := runRequest(application, cmd)
			if err != nil {
				return err
			}
			return application.Schedule(ctx, req)
		},
	}
}

func setup(ctx context.Context, adjust ...func(*config.Config)) (*app.Application, error) {
	cfg := config.Load()
	for _, fn := range adjust {
		fn(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewWithWriter(os.Stderr, cfg.Logging.Level)
	return app.New(ctx, cfg, logger)
}

func runRequest(application *app.Application, cmd *cli.Command) (usecase.RunRequest, error) {
	sources, err := application.SelectSources(cmd.StringSlice("source"))
	if err != nil {
		return usecase.RunRequest{}, err
	}
	return usecase.RunRequest{FocusHint: cmd.String("focus"), Sources: sources}, nil
}

func printLine(w io.Writer, ev domain.ProgressEvent) {
	fmt.Fprintln(w, progress.Format(ev))
}

func printJSON(w io.Writer, ev domain.ProgressEvent) {
	_ = json.NewEncoder(w).Encode(ev)
}
