package metrics

import (
	"fmt"
	"io"
	"strconv"
	"sync/atomic"
)

// Registry counts what the controller did during a session. A nil Registry
// discards everything.
type Registry struct {
	launches        atomic.Int64
	spawnFailures   atomic.Int64
	kills           atomic.Int64
	exitsSucceeded  atomic.Int64
	exitsFailed     atomic.Int64
	eventsAccepted  atomic.Int64
	eventsFiltered  atomic.Int64
	eventsCoalesced atomic.Int64
	watchErrors     atomic.Int64
}

type Snapshot struct {
	Launches        int64
	SpawnFailures   int64
	Kills           int64
	ExitsSucceeded  int64
	ExitsFailed     int64
	EventsAccepted  int64
	EventsFiltered  int64
	EventsCoalesced int64
	WatchErrors     int64
}

func (r *Registry) IncLaunch() {
	if r == nil {
		return
	}
	r.launches.Add(1)
}

func (r *Registry) IncSpawnFailure() {
	if r == nil {
		return
	}
	r.spawnFailures.Add(1)
}

func (r *Registry) IncKill() {
	if r == nil {
		return
	}
	r.kills.Add(1)
}

func (r *Registry) RecordExit(success bool) {
	if r == nil {
		return
	}
	if success {
		r.exitsSucceeded.Add(1)
		return
	}
	r.exitsFailed.Add(1)
}

func (r *Registry) IncEventAccepted() {
	if r == nil {
		return
	}
	r.eventsAccepted.Add(1)
}

func (r *Registry) IncEventFiltered() {
	if r == nil {
		return
	}
	r.eventsFiltered.Add(1)
}

func (r *Registry) AddEventsCoalesced(count int) {
	if r == nil || count <= 0 {
		return
	}
	r.eventsCoalesced.Add(int64(count))
}

func (r *Registry) IncWatchError() {
	if r == nil {
		return
	}
	r.watchErrors.Add(1)
}

func (r *Registry) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	return Snapshot{
		Launches:        r.launches.Load(),
		SpawnFailures:   r.spawnFailures.Load(),
		Kills:           r.kills.Load(),
		ExitsSucceeded:  r.exitsSucceeded.Load(),
		ExitsFailed:     r.exitsFailed.Load(),
		EventsAccepted:  r.eventsAccepted.Load(),
		EventsFiltered:  r.eventsFiltered.Load(),
		EventsCoalesced: r.eventsCoalesced.Load(),
		WatchErrors:     r.watchErrors.Load(),
	}
}

// Fields renders the snapshot as log fields.
func (s Snapshot) Fields() map[string]string {
	return map[string]string{
		"launches":         strconv.FormatInt(s.Launches, 10),
		"spawn_failures":   strconv.FormatInt(s.SpawnFailures, 10),
		"kills":            strconv.FormatInt(s.Kills, 10),
		"exits_succeeded":  strconv.FormatInt(s.ExitsSucceeded, 10),
		"exits_failed":     strconv.FormatInt(s.ExitsFailed, 10),
		"events_accepted":  strconv.FormatInt(s.EventsAccepted, 10),
		"events_filtered":  strconv.FormatInt(s.EventsFiltered, 10),
		"events_coalesced": strconv.FormatInt(s.EventsCoalesced, 10),
		"watch_errors":     strconv.FormatInt(s.WatchErrors, 10),
	}
}

// WritePrometheus writes the counters in the Prometheus text format.
func (r *Registry) WritePrometheus(writer io.Writer) error {
	if r == nil {
		return nil
	}
	s := r.Snapshot()
	counters := []struct {
		metric string
		help   string
		value  int64
	}{
		{"saw_launches_total", "Commands started", s.Launches},
		{"saw_spawn_failures_total", "Commands that failed to start", s.SpawnFailures},
		{"saw_kills_total", "Commands killed on restart", s.Kills},
		{"saw_exits_succeeded_total", "Commands that exited successfully", s.ExitsSucceeded},
		{"saw_exits_failed_total", "Commands that exited unsuccessfully", s.ExitsFailed},
		{"saw_events_accepted_total", "Change events that triggered a run", s.EventsAccepted},
		{"saw_events_filtered_total", "Change events rejected by the target or kind filter", s.EventsFiltered},
		{"saw_events_coalesced_total", "Change events absorbed by the quiet window", s.EventsCoalesced},
		{"saw_watch_errors_total", "Errors reported by the change source", s.WatchErrors},
	}
	for _, counter := range counters {
		if err := writeCounter(writer, counter.metric, counter.help, counter.value); err != nil {
			return err
		}
	}
	return nil
}

func writeCounter(writer io.Writer, metric, help string, value int64) error {
	_, err := fmt.Fprintf(writer, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", metric, help, metric, metric, value)
	return err
}
