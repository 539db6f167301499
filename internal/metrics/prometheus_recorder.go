package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docmigrate"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg            *prom.Registry
	filesScanned   prom.Counter
	filesChanged   prom.Counter
	ruleHits       *prom.CounterVec
	unresolvedRefs prom.Counter
	runDuration    *prom.HistogramVec
	runOutcome     *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg,
// or on a fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		filesScanned: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "files_scanned_total",
			Help:      "Files read by the rewrite driver",
		}),
		filesChanged: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "files_changed_total",
			Help:      "Files whose content the rewrite changed",
		}),
		ruleHits: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rule_hits_total",
			Help:      "Replacements made per rewrite rule",
		}, []string{"rule"}),
		unresolvedRefs: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "unresolved_refs_total",
			Help:      "Navigation references no rule accounted for",
		}),
		runDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a command run",
			Buckets:   prom.DefBuckets,
		}, []string{"command"}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Command runs by final status",
		}, []string{"command", "outcome"}),
	}
	reg.MustRegister(pr.filesScanned, pr.filesChanged, pr.ruleHits, pr.unresolvedRefs, pr.runDuration, pr.runOutcome)
	return pr
}

func (p *PrometheusRecorder) AddFilesScanned(n int) { p.filesScanned.Add(float64(n)) }
func (p *PrometheusRecorder) AddFilesChanged(n int) { p.filesChanged.Add(float64(n)) }

func (p *PrometheusRecorder) AddRuleHits(rule string, n int) {
	p.ruleHits.WithLabelValues(rule).Add(float64(n))
}

func (p *PrometheusRecorder) AddUnresolvedRefs(n int) { p.unresolvedRefs.Add(float64(n)) }

func (p *PrometheusRecorder) ObserveRunDuration(command string, d time.Duration) {
	p.runDuration.WithLabelValues(command).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(command string, outcome OutcomeLabel) {
	p.runOutcome.WithLabelValues(command, string(outcome)).Inc()
}

// Registry exposes the underlying registry, e.g. for tests.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

// WriteTextfile writes every registered metric to path in the Prometheus
// text format. The write goes through a temporary file and rename.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
