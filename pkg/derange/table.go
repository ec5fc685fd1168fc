package derange

import (
	"encoding/binary"
	"math/bits"

	"github.com/cespare/xxhash/v2"

	"github.com/matzehuels/derange/pkg/errors"
)

// Table holds the completion counts for one item count n.
//
// counts[p<<n | mask] is the number of ways to fill positions [p, n) with the
// items not in mask such that no item c is placed at position c. Only states
// with popcount(mask) == p are reachable; every other cell is zero, which is
// also its true count. The position-n row is implicit (see Count).
//
// A Table is immutable once built and safe for concurrent use.
type Table struct {
	n      int
	full   uint64
	counts []uint64
}

// NewTable builds the count table for n items, 1 ≤ n ≤ MaxN.
//
// Time complexity:  O(n² · 2ⁿ)
// Memory complexity: O(n · 2ⁿ)
//
// The table is filled bottom-up from position n-1 to 0, so every lookup of
// position p+1 is already final when position p reads it.
func NewTable(n int) (*Table, error) {
	if err := validateTableN(n); err != nil {
		return nil, err
	}

	t := &Table{
		n:      n,
		full:   uint64(1)<<n - 1,
		counts: make([]uint64, n<<n),
	}

	for p := n - 1; p >= 0; p-- {
		row := t.counts[p<<n : (p+1)<<n]
		for mask := uint64(0); mask <= t.full; mask++ {
			if bits.OnesCount64(mask) != p {
				continue
			}
			var ways uint64
			for c := 0; c < n; c++ {
				bit := uint64(1) << c
				if c == p || mask&bit != 0 {
					continue
				}
				ways += t.Count(p+1, mask|bit)
			}
			row[mask] = ways
		}
	}
	return t, nil
}

func validateTableN(n int) error {
	if n < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "table needs at least one item, got n=%d", n)
	}
	if n > MaxN {
		return errors.New(errors.ErrCodeOverflow, "n=%d exceeds supported maximum %d", n, MaxN)
	}
	return nil
}

// N returns the item count the table was built for.
func (t *Table) N() int { return t.n }

// Total returns the number of derangements of n items, countOf(0, ∅) == !n.
func (t *Table) Total() uint64 { return t.counts[0] }

// Cells returns the number of stored counts.
func (t *Table) Cells() int { return len(t.counts) }

// Count returns the number of valid completions from state (position, used).
// Position n is the base case: 1 if every item is used, 0 otherwise.
// Out-of-range states report 0.
func (t *Table) Count(position int, used uint64) uint64 {
	if position == t.n {
		if used == t.full {
			return 1
		}
		return 0
	}
	if position < 0 || position > t.n || used > t.full {
		return 0
	}
	return t.counts[position<<t.n|int(used)]
}

// tableMagic prefixes every encoded table.
var tableMagic = [4]byte{'D', 'R', 'T', '2'}

const (
	tableHeaderSize   = len(tableMagic) + 1
	tableChecksumSize = 8
)

// MarshalBinary encodes the table as magic, n, every count as a
// little-endian uint64, and finally an xxhash64 of all preceding bytes.
func (t *Table) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, tableHeaderSize+8*len(t.counts)+tableChecksumSize)
	buf = append(buf, tableMagic[:]...)
	buf = append(buf, byte(t.n))
	for _, v := range t.counts {
		buf = binary.LittleEndian.AppendUint64(buf, v)
	}
	buf = binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(buf))
	return buf, nil
}

// UnmarshalBinary decodes a table produced by MarshalBinary. Any damaged
// byte fails the checksum, and the decoded total must equal Subfactorial(n).
func (t *Table) UnmarshalBinary(data []byte) error {
	if len(data) < tableHeaderSize+tableChecksumSize || [4]byte(data[:4]) != tableMagic {
		return errors.New(errors.ErrCodeInvalidInput, "not an encoded count table")
	}
	n := int(data[4])
	if err := validateTableN(n); err != nil {
		return err
	}
	cells := n << n
	body := len(data) - tableHeaderSize - tableChecksumSize
	if body != 8*cells {
		return errors.New(errors.ErrCodeInvalidInput, "count table for n=%d has %d bytes, want %d", n, body, 8*cells)
	}

	payload := data[:len(data)-tableChecksumSize]
	if sum := binary.LittleEndian.Uint64(data[len(payload):]); sum != xxhash.Sum64(payload) {
		return errors.New(errors.ErrCodeInvalidInput, "count table for n=%d fails its checksum", n)
	}

	counts := make([]uint64, cells)
	for i := range counts {
		counts[i] = binary.LittleEndian.Uint64(data[tableHeaderSize+8*i:])
	}
	want, err := Subfactorial(n)
	if err != nil {
		return err
	}
	if counts[0] != want {
		return errors.New(errors.ErrCodeInvalidInput, "count table total %d, want !%d = %d", counts[0], n, want)
	}

	t.n = n
	t.full = uint64(1)<<n - 1
	t.counts = counts
	return nil
}
