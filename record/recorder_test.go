package record_test

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/record"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/trace"
)

func TestRecorderPersistsAccessesAndSummary(t *testing.T) {
	cfg := cache.Config{
		BlockSize:             16,
		Associativity:         1,
		Capacity:              32,
		MissPenalty:           30,
		DirtyWritebackPenalty: 2,
	}
	c, err := cache.New(cfg)
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "run")
	recorder := record.New(dbPath, c)

	s := sim.New(c, sim.WithObserver(recorder.Observer()))
	err = s.Run(trace.NewSliceReader([]trace.Access{
		{Kind: trace.Write, Address: 0x00, Instructions: 1},
		{Kind: trace.Read, Address: 0x20, Instructions: 1},
		{Kind: trace.Read, Address: 0x20, Instructions: 1},
	}))
	require.NoError(t, err)

	recorder.Finalize(cfg, s.Stats())

	dbFile := dbPath + ".sqlite3"
	_, err = os.Stat(dbFile)
	require.NoError(t, err)

	db, err := sql.Open("sqlite3", dbFile)
	require.NoError(t, err)
	defer db.Close()

	var accessRows int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM accesses").Scan(&accessRows))
	assert.Equal(t, 3, accessRows)

	var hits int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM accesses WHERE Hit").Scan(&hits))
	assert.Equal(t, 1, hits)

	var writebacks int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM accesses WHERE DirtyWriteback").Scan(&writebacks))
	assert.Equal(t, 1, writebacks)

	var accesses, misses uint64
	require.NoError(t, db.QueryRow(
		"SELECT Accesses, Misses FROM summary").Scan(&accesses, &misses))
	assert.Equal(t, uint64(3), accesses)
	assert.Equal(t, uint64(2), misses)
}
