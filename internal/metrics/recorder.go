package metrics

import "time"

// OutcomeLabel enumerates run outcomes for counters.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeWarning OutcomeLabel = "warning"
	OutcomeFailed  OutcomeLabel = "failed"
)

// Recorder defines observability hooks for rewrite and navigation runs.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AddFilesScanned(n int)
	AddFilesChanged(n int)
	AddRuleHits(rule string, n int)
	AddUnresolvedRefs(n int)
	ObserveRunDuration(command string, d time.Duration)
	IncRunOutcome(command string, outcome OutcomeLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) AddFilesScanned(int) {}
func (NoopRecorder) AddFilesChanged(int) {}
func (NoopRecorder) AddRuleHits(string, int) {}
func (NoopRecorder) AddUnresolvedRefs(int) {}
func (NoopRecorder) ObserveRunDuration(string, time.Duration) {}
func (NoopRecorder) IncRunOutcome(string, OutcomeLabel) {}
