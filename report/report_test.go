package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/report"
	"github.com/sarchlab/cachesim/sim"
)

func sampleStats() sim.Statistics {
	return sim.Statistics{
		Accesses:        10,
		Writes:          4,
		Misses:          3,
		DirtyWritebacks: 1,
		Instructions:    50,
		Cycles:          100,
	}
}

func TestPrintHumanReadable(t *testing.T) {
	var buf bytes.Buffer
	report.Print(&buf, cache.DefaultConfig(), sampleStats())

	out := buf.String()
	assert.Contains(t, out, "CACHE SETTINGS")
	assert.Contains(t, out, "CACHE STATS")
	assert.Contains(t, out, "TOTAL ACCESSES: 10")
	assert.Contains(t, out, "READS: 6")
	assert.Contains(t, out, "MISS-RATE: 30.0000")
	assert.Contains(t, out, "IPC: 0.5000")
	assert.Contains(t, out, "DIRTY WB: 1")
}

func TestPrintUndefinedRatios(t *testing.T) {
	var buf bytes.Buffer
	report.Print(&buf, cache.DefaultConfig(), sim.Statistics{})

	out := buf.String()
	assert.Contains(t, out, "undefined")
	assert.NotContains(t, out, "NaN")
}

func TestPrintCSV(t *testing.T) {
	var buf bytes.Buffer
	report.PrintCSV(&buf, cache.DefaultConfig(), sampleStats())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "miss_rate_percent")
	assert.Contains(t, lines[1], "16,1,16384,30,2,10,6,4,3,7,")
}

func TestPrintCSVUndefinedRatiosAreEmpty(t *testing.T) {
	var buf bytes.Buffer
	report.PrintCSV(&buf, cache.DefaultConfig(), sim.Statistics{})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], ","))
	assert.NotContains(t, lines[1], "NaN")
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.PrintJSON(&buf, cache.DefaultConfig(), sampleStats()))

	var summary report.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &summary))

	assert.Equal(t, report.Version, summary.Metadata.Version)
	assert.Equal(t, uint64(10), summary.Counters.Accesses)
	assert.Equal(t, uint64(6), summary.Counters.Reads)
	assert.Equal(t, uint64(7), summary.Counters.Hits)
	require.NotNil(t, summary.Derived.MissRatePercent)
	assert.InDelta(t, 30.0, *summary.Derived.MissRatePercent, 1e-9)
	require.NotNil(t, summary.Derived.IPC)
	assert.InDelta(t, 0.5, *summary.Derived.IPC, 1e-9)
}

func TestPrintJSONUndefinedRatiosAreNull(t *testing.T) {
	summary := report.NewSummary(cache.DefaultConfig(), sim.Statistics{})

	assert.Nil(t, summary.Derived.MissRatePercent)
	assert.Nil(t, summary.Derived.IPC)
}

func TestPrintSets(t *testing.T) {
	c, err := cache.New(cache.Config{
		BlockSize:             16,
		Associativity:         2,
		Capacity:              64,
		MissPenalty:           30,
		DirtyWritebackPenalty: 2,
	})
	require.NoError(t, err)

	c.Write(0x00)

	var buf bytes.Buffer
	report.PrintSets(&buf, c)

	out := buf.String()
	assert.Contains(t, out, "CACHE CONTENTS")
	assert.Contains(t, out, "dirty")
	assert.Contains(t, out, "invalid")
}
