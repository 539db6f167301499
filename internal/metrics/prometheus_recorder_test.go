package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.AddFilesScanned(3)
	pr.AddFilesChanged(1)
	pr.AddRuleHits("guides/", 4)
	pr.AddRuleHits("guides/", 2)
	pr.AddUnresolvedRefs(2)
	pr.ObserveRunDuration("rewrite", 150*time.Millisecond)
	pr.IncRunOutcome("rewrite", OutcomeSuccess)

	assert.InDelta(t, 3, testutil.ToFloat64(pr.filesScanned), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.filesChanged), 0)
	assert.InDelta(t, 6, testutil.ToFloat64(pr.ruleHits.WithLabelValues("guides/")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(pr.unresolvedRefs), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.runOutcome.WithLabelValues("rewrite", "success")), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 6)
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.AddFilesChanged(2)

	path := filepath.Join(t.TempDir(), "docmigrate.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "docmigrate_files_changed_total 2")
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.AddFilesScanned(1)
	r.AddRuleHits("x", 1)
	r.ObserveRunDuration("nav", time.Second)
	r.IncRunOutcome("nav", OutcomeFailed)
}
