package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Reader streams Access records from a textual trace. It follows the
// bufio.Scanner protocol: call Scan until it returns false, reading the
// current record with Access, then check Err. A Reader is single-pass;
// replaying a trace means constructing a new Reader.
type Reader struct {
	scanner *bufio.Scanner
	access  Access
	line    int
	err     error
}

// NewReader creates a Reader that consumes trace lines from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Scan advances the reader to the next record. It returns false when the
// trace is exhausted or a line fails to parse; Err distinguishes the two.
// Blank lines are skipped.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}

	for r.scanner.Scan() {
		r.line++

		text := r.scanner.Text()
		if isBlank(text) {
			continue
		}

		access, err := ParseLine(text)
		if err != nil {
			r.err = fmt.Errorf("trace line %d: %w", r.line, err)
			return false
		}

		r.access = access
		return true
	}

	r.err = r.scanner.Err()
	return false
}

// Access returns the record produced by the most recent successful Scan.
func (r *Reader) Access() Access {
	return r.access
}

// Err returns the first error encountered while scanning, or nil if the
// trace ended cleanly.
func (r *Reader) Err() error {
	return r.err
}

func isBlank(line string) bool {
	for _, c := range line {
		if c != ' ' && c != '\t' && c != '\r' {
			return false
		}
	}
	return true
}

// FileReader is a Reader backed by a trace file. Closing the file is an
// explicit step, independent of when results are reported.
type FileReader struct {
	Reader
	f *os.File
}

// Open opens a trace file for streaming replay.
func Open(path string) (*FileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	return &FileReader{
		Reader: Reader{scanner: bufio.NewScanner(f)},
		f:      f,
	}, nil
}

// Close releases the underlying trace file.
func (r *FileReader) Close() error {
	return r.f.Close()
}
