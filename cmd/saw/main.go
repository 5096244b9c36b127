package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"saw/internal/cli"
	"saw/internal/config"
	"saw/internal/controller"
	"saw/internal/logging"
	"saw/internal/metrics"
	"saw/internal/process"
	"saw/internal/version"
	"saw/internal/watcher"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(ctx, stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitCodeSuccess
	}
	fmt.Fprintf(stderr, "saw: %v\n", err)
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return exitCodeUsage
}

func newRootCommand(ctx context.Context, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "saw --it <PATH> --do <COMMAND>",
		Short:         "Run a command whenever a file or directory changes",
		Args:          cobra.NoArgs,
		Version:       version.GetVersionInfo().String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(ctx, cmd, stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("saw {{.Version}}\n")
	cli.AddRunFlags(root.Flags())
	return root
}

func runWatch(ctx context.Context, cmd *cobra.Command, stdout, stderr io.Writer) error {
	v, err := config.NewViper(cmd.Flags())
	if err != nil {
		return err
	}
	cfg, err := config.Load(v)
	printConfig := v.GetBool(config.KeyPrintConfig)
	if errors.Is(err, config.ErrMissingRequired) {
		if printConfig {
			return cfg.WriteYAML(stdout)
		}
		return cmd.Help()
	}
	if err != nil {
		return err
	}
	if printConfig {
		return cfg.WriteYAML(stdout)
	}

	logger, closeLogs := newLogger(cfg, stdout)
	defer closeLogs()

	target, err := watcher.ResolveTarget(cfg.Path)
	if err != nil {
		return &exitError{code: exitCodeWatchInit, err: err}
	}
	source, err := watcher.New(target, watcher.Options{Logger: logger})
	if err != nil {
		return &exitError{code: exitCodeWatchInit, err: err}
	}
	defer source.Close()

	return runSession(ctx, cfg, source, logger, stdout, stderr)
}

// sessionSource is a change source that knows what it watches.
type sessionSource interface {
	controller.Source
	Target() watcher.Target
}

// runSession drives the controller until it stops. A disconnected source ends
// the session like a signal does.
func runSession(ctx context.Context, cfg config.RunConfig, source sessionSource, logger *logging.Logger, stdout, stderr io.Writer) error {
	target := source.Target()
	logger.Info("Watching path: "+target.Root, nil)
	if target.IsFile() {
		logger.Info("Targeting specific file: "+target.File, nil)
	}
	logger.Info("Command to run: '"+cfg.Command+"'", nil)
	logger.Info(fmt.Sprintf("Restart on change: %t", cfg.Restart), nil)

	stats := &metrics.Registry{}
	ctl, err := controller.New(source, controller.Options{
		Command:      cfg.Command,
		Restart:      cfg.Restart,
		Clear:        cfg.Clear,
		Screen:       stdout,
		Target:       target,
		Kinds:        cfg.Events,
		Debounce:     cfg.Debounce,
		PollInterval: cfg.PollInterval,
		Spawner: process.Spawner{
			Shell:     cfg.Shell,
			TTY:       cfg.TTY,
			KillGrace: cfg.KillGrace,
			Stdout:    stdout,
			Stderr:    stderr,
		},
		Logger: logger,
		Stats:  stats,
	})
	if err != nil {
		return err
	}

	runErr := ctl.Run(ctx)
	logger.Debug("session summary", stats.Snapshot().Fields())
	if cfg.MetricsFile != "" {
		if err := writeMetrics(cfg.MetricsFile, stats); err != nil {
			logger.Error("write metrics failed", map[string]string{"error": err.Error()})
		}
	}

	switch {
	case errors.Is(runErr, controller.ErrSourceDisconnected),
		errors.Is(runErr, context.Canceled),
		errors.Is(runErr, context.DeadlineExceeded):
		return nil
	default:
		return runErr
	}
}

func newLogger(cfg config.RunConfig, console io.Writer) (*logging.Logger, func()) {
	level := logging.LevelWarning
	if cfg.Verbose {
		level = logging.LevelDebug
	}
	sinks := []logging.Sink{{Writer: console, Format: cfg.LogFormat}}
	closeLogs := func() {}
	if cfg.LogFile != "" {
		sink, closer := logging.FileSink(cfg.LogFile)
		sinks = append(sinks, sink)
		closeLogs = func() { _ = closer.Close() }
	}
	return logging.New(logging.Options{Level: level, Sinks: sinks}), closeLogs
}

func writeMetrics(path string, stats *metrics.Registry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	if err := stats.WritePrometheus(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("write metrics file: %w", err)
	}
	return file.Close()
}
