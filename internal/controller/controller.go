package controller

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"saw/internal/logging"
	"saw/internal/metrics"
	"saw/internal/process"
	"saw/internal/watcher"
)

var ErrSourceDisconnected = errors.New("change source disconnected")

const (
	DefaultDebounce     = 100 * time.Millisecond
	DefaultPollInterval = 100 * time.Millisecond

	shutdownTimeout     = 5 * time.Second
	watchErrorBurst     = 5
	watchErrorPerSecond = 1
)

// Source delivers change events. Events is closed when the source goes away.
type Source interface {
	Events() <-chan watcher.Event
	Errors() <-chan error
}

type Spawner interface {
	Spawn(command string) (process.Handle, error)
}

type Options struct {
	Command string
	// Restart kills the running command on change instead of waiting for it.
	Restart bool
	// Clear erases Screen before every run.
	Clear  bool
	Screen io.Writer

	Target       watcher.Target
	Kinds        watcher.KindSet
	Debounce     time.Duration
	PollInterval time.Duration

	Spawner Spawner
	Logger  *logging.Logger
	Stats   *metrics.Registry
}

type Controller struct {
	source Source
	events <-chan watcher.Event
	errors <-chan error

	command      string
	restart      bool
	clear        bool
	screen       io.Writer
	target       watcher.Target
	kinds        watcher.KindSet
	debounce     time.Duration
	pollInterval time.Duration
	spawner      Spawner
	logger       *logging.Logger
	stats        *metrics.Registry

	slot            process.Slot
	errorLimiter    *rate.Limiter
	suppressedError int
}

func New(source Source, options Options) (*Controller, error) {
	if source == nil {
		return nil, errors.New("change source is required")
	}
	if options.Spawner == nil {
		return nil, errors.New("spawner is required")
	}
	if options.Command == "" {
		return nil, process.ErrEmptyCommand
	}
	debounce := options.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	pollInterval := options.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	kinds := options.Kinds
	if kinds == 0 {
		kinds = watcher.DefaultKinds
	}
	logger := options.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Controller{
		source:       source,
		events:       source.Events(),
		errors:       source.Errors(),
		command:      options.Command,
		restart:      options.Restart,
		clear:        options.Clear,
		screen:       options.Screen,
		target:       options.Target,
		kinds:        kinds,
		debounce:     debounce,
		pollInterval: pollInterval,
		spawner:      options.Spawner,
		logger:       logger.Component("controller"),
		stats:        options.Stats,
		errorLimiter: rate.NewLimiter(rate.Limit(watchErrorPerSecond), watchErrorBurst),
	}, nil
}

func (c *Controller) state() State {
	if c.slot.Empty() {
		return StateIdle
	}
	return StateRunning
}

// Run processes events until ctx ends or the source disconnects. It returns
// ctx.Err() or ErrSourceDisconnected; the tracked command is stopped either
// way.
func (c *Controller) Run(ctx context.Context) error {
	c.logStart()
	for {
		c.reapExited()

		var (
			wake   <-chan time.Time
			exited <-chan struct{}
			timer  *time.Timer
		)
		if timeout, bounded := c.state().receiveTimeout(c.pollInterval); bounded {
			timer = time.NewTimer(timeout)
			wake = timer.C
			exited = c.slot.Peek().Done()
		}

		var err error
		select {
		case <-ctx.Done():
			err = c.shutdown(ctx, ctx.Err())
		case event, ok := <-c.events:
			if !ok {
				err = c.disconnect(ctx)
				break
			}
			err = c.handleEvent(ctx, event)
		case watchErr := <-c.errors:
			c.reportWatchError(watchErr)
		case <-exited:
		case <-wake:
		}
		if timer != nil {
			timer.Stop()
		}
		if err != nil {
			return err
		}
	}
}

func (c *Controller) logStart() {
	fields := map[string]string{
		"path":    c.target.Root,
		"command": c.command,
		"restart": strconv.FormatBool(c.restart),
		"on":      c.kinds.String(),
	}
	if c.target.IsFile() {
		fields["file"] = c.target.File
	}
	c.logger.Info("Waiting for changes...", fields)
}

func (c *Controller) handleEvent(ctx context.Context, event watcher.Event) error {
	if !c.target.Matches(event.Paths) || !c.kinds.Has(event.Kind) {
		c.stats.IncEventFiltered()
		return nil
	}
	c.stats.IncEventAccepted()

	disconnected := c.drain(ctx)
	if ctx.Err() != nil {
		return c.shutdown(ctx, ctx.Err())
	}
	if disconnected {
		return c.disconnect(ctx)
	}
	c.logger.Info("Change detected: "+event.Kind.String(), eventFields(event))

	c.reapExited()
	if err := c.dispose(ctx); err != nil {
		return c.shutdown(ctx, err)
	}
	c.launch()
	return nil
}

func eventFields(event watcher.Event) map[string]string {
	fields := map[string]string{"kind": event.Kind.String()}
	if len(event.Paths) > 0 {
		fields["path"] = event.Paths[0]
	}
	return fields
}

func (c *Controller) disconnect(ctx context.Context) error {
	c.logger.Error("Channel disconnected", nil)
	return c.shutdown(ctx, ErrSourceDisconnected)
}

// shutdown stops the tracked command and returns cause.
func (c *Controller) shutdown(ctx context.Context, cause error) error {
	if c.slot.Empty() {
		return cause
	}
	c.logger.Debug("stopping command", map[string]string{"reason": cause.Error()})
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := c.slot.Stop(stopCtx); err != nil {
		c.logger.Debug("stop command failed", map[string]string{"error": err.Error()})
	}
	return cause
}

func (c *Controller) reportWatchError(err error) {
	if err == nil {
		return
	}
	c.stats.IncWatchError()
	if !c.errorLimiter.Allow() {
		c.suppressedError++
		return
	}
	fields := map[string]string{"error": err.Error()}
	if c.suppressedError > 0 {
		fields["suppressed"] = strconv.Itoa(c.suppressedError)
		c.suppressedError = 0
	}
	c.logger.Warn("Watch error: "+err.Error(), fields)
}
