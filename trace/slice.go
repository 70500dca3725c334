package trace

// SliceReader replays an in-memory access sequence through the same
// Scan/Access/Err protocol as Reader. It never fails; it exists so
// generated workloads and tests can stand in for a trace file.
type SliceReader struct {
	accesses []Access
	pos      int
}

// NewSliceReader creates a reader over the given access sequence. The
// slice is not copied; callers must not mutate it during replay.
func NewSliceReader(accesses []Access) *SliceReader {
	return &SliceReader{accesses: accesses, pos: -1}
}

// Scan advances to the next record, returning false past the end.
func (r *SliceReader) Scan() bool {
	if r.pos+1 >= len(r.accesses) {
		return false
	}
	r.pos++
	return true
}

// Access returns the current record.
func (r *SliceReader) Access() Access {
	return r.accesses[r.pos]
}

// Err always returns nil.
func (r *SliceReader) Err() error {
	return nil
}
