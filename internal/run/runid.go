package run

import (
	"encoding/binary"
	"hash/fnv"
	"strings"
	"time"
)

// NewRunID generates a compact base36 run identifier from the input source
// and the start time.
func NewRunID(source string, start time.Time) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.TrimSpace(source)))
	_, _ = h.Write([]byte{'|'})
	_, _ = h.Write([]byte(start.UTC().Format(time.RFC3339Nano)))
	v := h.Sum64()

	// take 5 bytes for brevity (~8 base36 chars)
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	n := uint64(b[3])<<32 | uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	if n == 0 {
		return "0"
	}
	out := make([]byte, 0, 8)
	for n > 0 {
		out = append(out, alphabet[n%36])
		n /= 36
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
