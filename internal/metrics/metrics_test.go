package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestRegistryCounts(t *testing.T) {
	registry := &Registry{}
	registry.IncLaunch()
	registry.IncLaunch()
	registry.IncKill()
	registry.RecordExit(true)
	registry.RecordExit(false)
	registry.AddEventsCoalesced(4)
	registry.AddEventsCoalesced(-1)

	snapshot := registry.Snapshot()
	if snapshot.Launches != 2 || snapshot.Kills != 1 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}
	if snapshot.ExitsSucceeded != 1 || snapshot.ExitsFailed != 1 {
		t.Fatalf("unexpected exits %+v", snapshot)
	}
	if snapshot.EventsCoalesced != 4 {
		t.Fatalf("expected 4 coalesced events, got %d", snapshot.EventsCoalesced)
	}
	if snapshot.Fields()["launches"] != "2" {
		t.Fatalf("unexpected fields %v", snapshot.Fields())
	}
}

func TestNilRegistryIsSafe(t *testing.T) {
	var registry *Registry
	registry.IncLaunch()
	registry.RecordExit(true)
	if registry.Snapshot() != (Snapshot{}) {
		t.Fatal("expected empty snapshot")
	}
	if err := registry.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWritePrometheus(t *testing.T) {
	registry := &Registry{}
	registry.IncSpawnFailure()

	var out bytes.Buffer
	if err := registry.WritePrometheus(&out); err != nil {
		t.Fatalf("write: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "# TYPE saw_spawn_failures_total counter\nsaw_spawn_failures_total 1\n") {
		t.Fatalf("missing counter in output:\n%s", text)
	}
	if !strings.Contains(text, "saw_launches_total 0\n") {
		t.Fatalf("missing zero counter in output:\n%s", text)
	}
}
