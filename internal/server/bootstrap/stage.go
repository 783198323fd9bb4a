package bootstrap

import (
	"fmt"
	"sort"
	"sync"

	"userdata/internal/logging"
)

// Stage is one startup step. Optional stages may fail without stopping the
// server; the failure is reported on /health instead.
type Stage struct {
	Name     string
	Optional bool
	Start    func() error
}

// Degraded collects optional stages that failed. It satisfies the HTTP
// layer's DegradedReporter.
type Degraded struct {
	mu       sync.RWMutex
	failures map[string]string
}

// NewDegraded returns an empty set.
func NewDegraded() *Degraded {
	return &Degraded{failures: map[string]string{}}
}

func (d *Degraded) add(stage string, err error) {
	d.mu.Lock()
	d.failures[stage] = err.Error()
	d.mu.Unlock()
}

// Map returns a copy of stage name to failure message.
func (d *Degraded) Map() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]string, len(d.failures))
	for stage, reason := range d.failures {
		out[stage] = reason
	}
	return out
}

// Names lists the failed stages in order.
func (d *Degraded) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.failures))
	for stage := range d.failures {
		names = append(names, stage)
	}
	sort.Strings(names)
	return names
}

// RunStages starts stages in order and stops at the first mandatory failure.
func RunStages(stages []Stage, degraded *Degraded, logger logging.Logger) error {
	logger = logging.OrNop(logger)
	for _, stage := range stages {
		err := stage.Start()
		switch {
		case err == nil:
			logger.Debug("[Bootstrap] %s ready", stage.Name)
		case !stage.Optional:
			return fmt.Errorf("start %s: %w", stage.Name, err)
		default:
			logger.Warn("[Bootstrap] %s unavailable, continuing without it: %v", stage.Name, err)
			if degraded != nil {
				degraded.add(stage.Name, err)
			}
		}
	}
	return nil
}
