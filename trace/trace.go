// Package trace provides memory-access trace parsing and streaming replay.
package trace

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the direction of a memory access.
type Kind int

const (
	// Read is a load access.
	Read Kind = iota
	// Write is a store access.
	Write
)

// String returns a human-readable name for the access kind.
func (k Kind) String() string {
	switch k {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Access is one record of a memory-access trace. Records are consumed in
// trace order and carry no state beyond their own fields.
type Access struct {
	// Kind is the access direction (read or write).
	Kind Kind
	// Address is the 64-bit byte address touched by the access.
	Address uint64
	// Instructions is the number of instructions retired since the
	// previous trace record, as counted by the trace producer.
	Instructions uint64
}

// ParseLine parses one trace line of the form
//
//	# <type> <hex_address> <instruction_count>
//
// where <type> is 0 for a read or 1 for a write, <hex_address> is a
// hexadecimal 64-bit address (an optional 0x prefix is accepted), and
// <instruction_count> is a non-negative decimal integer.
func ParseLine(line string) (Access, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return Access{}, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}

	if fields[0] != "#" {
		return Access{}, fmt.Errorf("record must start with %q, got %q", "#", fields[0])
	}

	kind, err := parseKind(fields[1])
	if err != nil {
		return Access{}, err
	}

	addrField := strings.TrimPrefix(strings.TrimPrefix(fields[2], "0x"), "0X")
	addr, err := strconv.ParseUint(addrField, 16, 64)
	if err != nil {
		return Access{}, fmt.Errorf("bad address %q: %w", fields[2], err)
	}

	instructions, err := strconv.ParseUint(fields[3], 10, 64)
	if err != nil {
		return Access{}, fmt.Errorf("bad instruction count %q: %w", fields[3], err)
	}

	return Access{Kind: kind, Address: addr, Instructions: instructions}, nil
}

func parseKind(field string) (Kind, error) {
	switch field {
	case "0":
		return Read, nil
	case "1":
		return Write, nil
	default:
		return 0, fmt.Errorf("bad access type %q: must be 0 (read) or 1 (write)", field)
	}
}
