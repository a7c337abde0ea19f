package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)

	SlotReadsTotal.WithLabelValues("watched-episodes", OutcomeOK).Inc()
	FramesRenderedTotal.WithLabelValues("start").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "continue_watching_records_slot_reads_total")
	assert.Contains(t, names, "continue_watching_frames_rendered_total")
	assert.Contains(t, names, "continue_watching_active_presenters")
}

func TestRegister_TwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)

	assert.Panics(t, func() { Register(reg) })
}

func TestCollectorsLint(t *testing.T) {
	for _, c := range []prometheus.Collector{SlotReadsTotal, ResumeEntries, FramesRenderedTotal, ActivePresenters} {
		problems, err := testutil.CollectAndLint(c)
		require.NoError(t, err)
		assert.Empty(t, problems)
	}
}
