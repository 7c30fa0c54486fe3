// SPDX-License-Identifier: EPL-2.0

package chunk

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Size limits in bytes.
const (
	// DefaultMaxChunkBytes is the part size used when none is given.
	DefaultMaxChunkBytes = 20 * 1024 * 1024
	// DefaultCeilingBytes is the largest payload delivered in one piece.
	DefaultCeilingBytes = 25 * 1024 * 1024
)

var (
	ErrEmptyPayload  = errors.New("empty payload")
	ErrNotContiguous = errors.New("chunks are not contiguous")
)

// Chunk is one part of a payload. Payload aliases the split input.
type Chunk struct {
	Index   int // 1-based
	Total   int
	Start   int64
	End     int64 // exclusive
	Payload []byte
}

// Len returns the size of the part in bytes.
func (c Chunk) Len() int64 { return c.End - c.Start }

// Name derives the part file name from the name of the whole payload.
func (c Chunk) Name(base string) string {
	return PartName(base, c.Index, c.Total)
}

func (c Chunk) String() string {
	return fmt.Sprintf("part %d/%d: [%d, %d)", c.Index, c.Total, c.Start, c.End)
}

// Count returns how many parts Split produces for size bytes.
func Count(size, maxChunkBytes int64) int {
	if size <= 0 {
		return 0
	}
	if maxChunkBytes <= 0 {
		maxChunkBytes = DefaultMaxChunkBytes
	}
	return int((size + maxChunkBytes - 1) / maxChunkBytes)
}

// Split cuts payload into consecutive parts of maxChunkBytes; only the last
// may be shorter. maxChunkBytes <= 0 selects DefaultMaxChunkBytes.
func Split(payload []byte, maxChunkBytes int) ([]Chunk, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}
	if maxChunkBytes <= 0 {
		maxChunkBytes = DefaultMaxChunkBytes
	}

	size := int64(len(payload))
	limit := int64(maxChunkBytes)
	total := Count(size, limit)

	chunks := make([]Chunk, 0, total)
	for i := 1; i <= total; i++ {
		start := int64(i-1) * limit
		end := min(int64(i)*limit, size)
		chunks = append(chunks, Chunk{
			Index:   i,
			Total:   total,
			Start:   start,
			End:     end,
			Payload: payload[start:end:end],
		})
	}

	return chunks, nil
}

// PartName returns "<base>_part<index>of<total>.<ext>" for name, where ext is
// the extension of name.
func PartName(name string, index, total int) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_part%dof%d%s", base, index, total, ext)
}

// Join reassembles parts produced by Split, checking that they are complete
// and in order.
func Join(chunks []Chunk) ([]byte, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyPayload
	}

	total := chunks[0].Total
	if total != len(chunks) {
		return nil, fmt.Errorf("%w: have %d of %d parts", ErrNotContiguous, len(chunks), total)
	}

	var size int64
	for i, c := range chunks {
		if c.Index != i+1 || c.Total != total || c.Start != size || c.Len() != int64(len(c.Payload)) || c.Len() <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotContiguous, c)
		}
		size = c.End
	}

	out := make([]byte, 0, size)
	for _, c := range chunks {
		out = append(out, c.Payload...)
	}
	return out, nil
}
