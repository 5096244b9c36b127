package watcher

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"

	"saw/internal/logging"
)

const (
	defaultEventBuffer = 64
	defaultErrorBuffer = 8
)

// Options controls watcher behavior.
type Options struct {
	Logger      *logging.Logger
	EventBuffer int
}

// Watcher delivers Events for a Target's root and everything beneath it.
type Watcher struct {
	target    Target
	source    *fsnotify.Watcher
	events    chan Event
	errors    chan error
	done      chan struct{}
	closeOnce sync.Once
	logger    *logging.Logger

	mutex   sync.Mutex
	watched map[string]struct{}
}

// New registers target.Root with the OS and starts delivering events.
// Failing to watch the root is returned as an error.
func New(target Target, options Options) (*Watcher, error) {
	if target.Root == "" {
		return nil, ErrEmptyPath
	}
	source, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	logger := options.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	eventBuffer := options.EventBuffer
	if eventBuffer <= 0 {
		eventBuffer = defaultEventBuffer
	}

	instance := &Watcher{
		target:  target,
		source:  source,
		events:  make(chan Event, eventBuffer),
		errors:  make(chan error, defaultErrorBuffer),
		done:    make(chan struct{}),
		logger:  logger.Component("watcher"),
		watched: make(map[string]struct{}),
	}

	if err := instance.addTree(target.Root); err != nil {
		_ = source.Close()
		return nil, fmt.Errorf("watch %s: %w", target.Root, err)
	}

	go instance.forward()
	return instance, nil
}

func (watcher *Watcher) Target() Target {
	return watcher.target
}

// Events is closed when the OS notification channel closes or after Close.
func (watcher *Watcher) Events() <-chan Event {
	return watcher.events
}

// Errors carries non-fatal watch errors. It is never closed.
func (watcher *Watcher) Errors() <-chan error {
	return watcher.errors
}

// Close stops event delivery and releases the OS watches.
func (watcher *Watcher) Close() error {
	if watcher == nil {
		return nil
	}
	var err error
	watcher.closeOnce.Do(func() {
		close(watcher.done)
		err = watcher.source.Close()
	})
	return err
}

func (watcher *Watcher) forward() {
	defer close(watcher.events)
	for {
		select {
		case event, ok := <-watcher.source.Events:
			if !ok {
				watcher.logger.Debug("notification channel closed", nil)
				return
			}
			if event.Has(fsnotify.Create) {
				watcher.watchNewDirectory(event.Name)
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				watcher.forget(event.Name)
			}
			select {
			case watcher.events <- convertEvent(event):
			case <-watcher.done:
				return
			}
		case err, ok := <-watcher.source.Errors:
			if !ok {
				return
			}
			watcher.report(err)
		case <-watcher.done:
			return
		}
	}
}

func (watcher *Watcher) report(err error) {
	if err == nil {
		return
	}
	select {
	case watcher.errors <- err:
	case <-watcher.done:
	}
}
