// Package record persists per-access outcomes and run summaries to a
// SQLite database through akita's data recorder, so finished runs can be
// queried and compared offline.
package record

import (
	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/datarecording"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/trace"
)

// accessEntry is one simulated access in the database.
type accessEntry struct {
	Seq            uint64 `json:"seq" akita_data:"unique"`
	Kind           string `json:"kind" akita_data:"index"`
	Address        uint64 `json:"address" akita_data:"index"`
	Tag            uint64 `json:"tag"`
	Set            int    `json:"set" akita_data:"index"`
	Hit            bool   `json:"hit"`
	DirtyWriteback bool   `json:"dirty_writeback"`
	Cycles         uint64 `json:"cycles"`
}

// summaryEntry is the final state of one run in the database.
type summaryEntry struct {
	BlockSize             int    `json:"block_size"`
	Associativity         int    `json:"associativity"`
	Capacity              int    `json:"capacity"`
	MissPenalty           uint64 `json:"miss_penalty"`
	DirtyWritebackPenalty uint64 `json:"dirty_writeback_penalty"`

	Accesses        uint64 `json:"accesses"`
	Reads           uint64 `json:"reads"`
	Writes          uint64 `json:"writes"`
	Misses          uint64 `json:"misses"`
	Hits            uint64 `json:"hits"`
	DirtyWritebacks uint64 `json:"dirty_writebacks"`
	Instructions    uint64 `json:"instructions"`
	Cycles          uint64 `json:"cycles"`
}

// Recorder stores every simulated access and, on Finalize, the run
// summary. It feeds from the simulator's observer hook, so the simulation
// core stays unaware of storage.
type Recorder struct {
	recorder datarecording.DataRecorder
	cache    *cache.Cache
	seq      uint64
}

// New creates a Recorder writing to the SQLite database at path (without
// the .sqlite3 suffix). An empty path picks a fresh cachesim_<id> name so
// repeated runs never collide. The underlying recorder refuses to
// overwrite an existing database.
func New(path string, c *cache.Cache) *Recorder {
	if path == "" {
		path = "cachesim_" + xid.New().String()
	}

	r := &Recorder{
		recorder: datarecording.NewDataRecorder(path),
		cache:    c,
	}

	r.recorder.CreateTable("accesses", accessEntry{})
	r.recorder.CreateTable("summary", summaryEntry{})

	return r
}

// Observer returns the hook to register with the simulator. Each call
// records one access row, numbered in replay order.
func (r *Recorder) Observer() sim.Observer {
	return func(acc trace.Access, res sim.StepResult) {
		tag, set := r.cache.Decode(acc.Address)

		r.recorder.InsertData("accesses", accessEntry{
			Seq:            r.seq,
			Kind:           acc.Kind.String(),
			Address:        acc.Address,
			Tag:            tag,
			Set:            set,
			Hit:            res.Hit,
			DirtyWriteback: res.DirtyWriteback,
			Cycles:         res.Cycles,
		})
		r.seq++
	}
}

// Finalize writes the run summary row and flushes everything buffered.
// Call it once, after the simulation loop completes.
func (r *Recorder) Finalize(cfg cache.Config, stats sim.Statistics) {
	r.recorder.InsertData("summary", summaryEntry{
		BlockSize:             cfg.BlockSize,
		Associativity:         cfg.Associativity,
		Capacity:              cfg.Capacity,
		MissPenalty:           cfg.MissPenalty,
		DirtyWritebackPenalty: cfg.DirtyWritebackPenalty,

		Accesses:        stats.Accesses,
		Reads:           stats.Reads(),
		Writes:          stats.Writes,
		Misses:          stats.Misses,
		Hits:            stats.Hits(),
		DirtyWritebacks: stats.DirtyWritebacks,
		Instructions:    stats.Instructions,
		Cycles:          stats.Cycles,
	})

	r.recorder.Flush()
}

// Flush forces buffered rows to disk without finalizing the run.
func (r *Recorder) Flush() {
	r.recorder.Flush()
}
