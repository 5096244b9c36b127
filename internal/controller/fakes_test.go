package controller

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"saw/internal/logging"
	"saw/internal/metrics"
	"saw/internal/process"
	"saw/internal/watcher"
)

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type fakeSource struct {
	events chan watcher.Event
	errors chan error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		events: make(chan watcher.Event, 64),
		errors: make(chan error, 64),
	}
}

func (s *fakeSource) Events() <-chan watcher.Event { return s.events }
func (s *fakeSource) Errors() <-chan error         { return s.errors }

func (s *fakeSource) send(kind watcher.Kind, path string) {
	s.events <- watcher.Event{Kind: kind, Paths: []string{path}}
}

type fakeHandle struct {
	pid     int
	journal *journal
	done    chan struct{}
	once    sync.Once
	status  process.Status
	killErr error
	waitErr error
}

func (h *fakeHandle) PID() int { return h.pid }

func (h *fakeHandle) Poll() (process.Status, bool, error) {
	select {
	case <-h.done:
		return h.status, true, nil
	default:
		return process.Status{}, false, nil
	}
}

func (h *fakeHandle) Wait() (process.Status, error) {
	<-h.done
	return h.status, h.waitErr
}

func (h *fakeHandle) Kill() error {
	select {
	case <-h.done:
		return os.ErrProcessDone
	default:
	}
	h.journal.add("kill")
	h.exit(process.Status{Code: -1})
	return h.killErr
}

func (h *fakeHandle) Done() <-chan struct{} { return h.done }

func (h *fakeHandle) exit(status process.Status) {
	h.once.Do(func() {
		h.status = status
		if status.Code >= 0 {
			h.journal.add("exit")
		}
		close(h.done)
	})
}

type fakeSpawner struct {
	mu       sync.Mutex
	journal  *journal
	failures int
	// exitWith, when set, ends every spawned command immediately.
	exitWith *process.Status
	// killErr and waitErr are returned by every spawned command.
	killErr error
	waitErr error
	handles  chan *fakeHandle
	nextPID  int
}

func newFakeSpawner(j *journal) *fakeSpawner {
	return &fakeSpawner{journal: j, handles: make(chan *fakeHandle, 64), nextPID: 100}
}

func (s *fakeSpawner) Spawn(command string) (process.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		s.journal.add("spawn-failed")
		return nil, errors.New("boom")
	}
	s.nextPID++
	handle := &fakeHandle{
		pid:     s.nextPID,
		journal: s.journal,
		done:    make(chan struct{}),
		killErr: s.killErr,
		waitErr: s.waitErr,
	}
	s.journal.add("spawn")
	if s.exitWith != nil {
		handle.exit(*s.exitWith)
	}
	s.handles <- handle
	return handle, nil
}

type harness struct {
	t       *testing.T
	source  *fakeSource
	spawner *fakeSpawner
	journal *journal
	logger  *logging.Logger
	stats   *metrics.Registry
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

func startController(t *testing.T, configure func(*Options, *fakeSpawner)) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		source:  newFakeSource(),
		journal: &journal{},
		logger:  logging.Discard(),
		stats:   &metrics.Registry{},
		done:    make(chan struct{}),
	}
	h.spawner = newFakeSpawner(h.journal)
	options := Options{
		Command:      "make test",
		Target:       watcher.Target{Root: "/work"},
		Debounce:     50 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
		Spawner:      h.spawner,
		Logger:       h.logger,
		Stats:        h.stats,
	}
	if configure != nil {
		configure(&options, h.spawner)
	}
	ctl, err := New(h.source, options)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() {
		h.err = ctl.Run(ctx)
		close(h.done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
		}
	})
	return h
}

func (h *harness) nextHandle() *fakeHandle {
	h.t.Helper()
	select {
	case handle := <-h.spawner.handles:
		return handle
	case <-time.After(2 * time.Second):
		h.t.Fatal("timed out waiting for a spawn")
		return nil
	}
}

func (h *harness) noSpawnFor(d time.Duration) {
	h.t.Helper()
	select {
	case <-h.spawner.handles:
		h.t.Fatal("unexpected spawn")
	case <-time.After(d):
	}
}

func (h *harness) waitForMessage(prefix string) {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		return h.countMessages(prefix) > 0
	}, 2*time.Second, 5*time.Millisecond, "missing log line %q", prefix)
}

func (h *harness) countMessages(prefix string) int {
	count := 0
	for _, message := range h.logger.Buffer().Messages() {
		if strings.HasPrefix(message, prefix) {
			count++
		}
	}
	return count
}

func (h *harness) waitForResult() error {
	h.t.Helper()
	select {
	case <-h.done:
		return h.err
	case <-time.After(5 * time.Second):
		h.t.Fatal("controller did not return")
		return nil
	}
}
