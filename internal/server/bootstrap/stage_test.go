package bootstrap

import (
	"errors"
	"testing"

	"userdata/internal/logging"
)

func TestRunStagesStopsAtMandatoryFailure(t *testing.T) {
	degraded := NewDegraded()
	boom := errors.New("boom")
	var started []string

	stages := []Stage{
		{Name: "registry", Start: func() error { started = append(started, "registry"); return nil }},
		{Name: "storage", Start: func() error { started = append(started, "storage"); return boom }},
		{Name: "router", Start: func() error { started = append(started, "router"); return nil }},
	}

	err := RunStages(stages, degraded, logging.Nop())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
	if err.Error() != "start storage: boom" {
		t.Fatalf("unexpected error text %q", err.Error())
	}
	if len(started) != 2 {
		t.Fatalf("expected startup to stop after storage, started %v", started)
	}
	if len(degraded.Names()) != 0 {
		t.Fatalf("mandatory failures are not degraded components: %v", degraded.Map())
	}
}

func TestRunStagesRecordsOptionalFailures(t *testing.T) {
	degraded := NewDegraded()
	var reached bool

	stages := []Stage{
		{Name: "tracing", Optional: true, Start: func() error { return errors.New("exporter down") }},
		{Name: "observability", Optional: true, Start: func() error { return errors.New("bad yaml") }},
		{Name: "registry", Start: func() error { reached = true; return nil }},
	}

	if err := RunStages(stages, degraded, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reached {
		t.Fatal("mandatory stage after optional failures was not started")
	}
	names := degraded.Names()
	if len(names) != 2 || names[0] != "observability" || names[1] != "tracing" {
		t.Fatalf("unexpected degraded names %v", names)
	}
	if got := degraded.Map()["observability"]; got != "bad yaml" {
		t.Fatalf("unexpected reason %q", got)
	}
}

func TestDegradedMapIsCopy(t *testing.T) {
	degraded := NewDegraded()
	degraded.add("tracing", errors.New("unreachable"))

	snapshot := degraded.Map()
	snapshot["tracing"] = "changed"

	if got := degraded.Map()["tracing"]; got != "unreachable" {
		t.Fatalf("expected stored reason to be unchanged, got %q", got)
	}
}
