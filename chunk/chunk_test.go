// SPDX-License-Identifier: EPL-2.0

package chunk

import (
	"bytes"
	"errors"
	"testing"
)

func TestSplit_Ranges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		size  int
		max   int
		sizes []int
	}{
		{"single byte", 1, 4, []int{1}},
		{"exact fit", 8, 4, []int{4, 4}},
		{"remainder", 10, 4, []int{4, 4, 2}},
		{"smaller than max", 3, 100, []int{3}},
		{"one byte parts", 3, 1, []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			payload := make([]byte, tt.size)
			for i := range payload {
				payload[i] = byte(i)
			}

			chunks, err := Split(payload, tt.max)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			if len(chunks) != len(tt.sizes) {
				t.Fatalf("got %d chunks, want %d", len(chunks), len(tt.sizes))
			}

			var start int64
			for i, c := range chunks {
				if c.Index != i+1 || c.Total != len(tt.sizes) {
					t.Errorf("chunk %d: Index=%d Total=%d", i, c.Index, c.Total)
				}
				if c.Start != start || c.Len() != int64(tt.sizes[i]) || len(c.Payload) != tt.sizes[i] {
					t.Errorf("chunk %d = %s, want start %d size %d", i, c, start, tt.sizes[i])
				}
				if !bytes.Equal(c.Payload, payload[c.Start:c.End]) {
					t.Errorf("chunk %d payload mismatch", i)
				}
				start = c.End
			}
			if start != int64(tt.size) {
				t.Errorf("last End = %d, want %d", start, tt.size)
			}

			joined, err := Join(chunks)
			if err != nil || !bytes.Equal(joined, payload) {
				t.Errorf("Join() = %v, %v; want original payload", len(joined), err)
			}
		})
	}
}

func TestSplit_Empty(t *testing.T) {
	t.Parallel()

	for _, p := range [][]byte{nil, {}} {
		chunks, err := Split(p, 10)
		if !errors.Is(err, ErrEmptyPayload) || chunks != nil {
			t.Errorf("Split(%v) = %v, %v, want ErrEmptyPayload", p, chunks, err)
		}
	}
}

func TestSplit_DefaultMax(t *testing.T) {
	t.Parallel()

	payload := make([]byte, DefaultMaxChunkBytes+1)
	for _, limit := range []int{0, -5} {
		chunks, err := Split(payload, limit)
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}
		if len(chunks) != 2 || chunks[1].Len() != 1 {
			t.Errorf("Split(max=%d) gave %d chunks", limit, len(chunks))
		}
	}
}

// A 52 MB clip split at 20 MiB gives 20, 20 and 12 MB parts.
func TestSplit_LargeClip(t *testing.T) {
	t.Parallel()

	const mib = 1024 * 1024
	payload := make([]byte, 52*mib)

	chunks, err := Split(payload, DefaultMaxChunkBytes)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	want := []int64{20 * mib, 20 * mib, 12 * mib}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i, c := range chunks {
		if c.Len() != want[i] {
			t.Errorf("chunk %d size = %d, want %d", i+1, c.Len(), want[i])
		}
	}

	names := []string{"clip_part1of3.mp3", "clip_part2of3.mp3", "clip_part3of3.mp3"}
	for i, c := range chunks {
		if got := c.Name("clip.mp3"); got != names[i] {
			t.Errorf("Name() = %q, want %q", got, names[i])
		}
	}
}

func TestSplit_NoCopy(t *testing.T) {
	t.Parallel()

	payload := []byte("abcdef")
	chunks, err := Split(payload, 4)
	if err != nil {
		t.Fatal(err)
	}

	payload[0] = 'X'
	if chunks[0].Payload[0] != 'X' {
		t.Error("chunk payload does not alias the input")
	}
	if cap(chunks[0].Payload) != 4 {
		t.Errorf("cap = %d, want 4", cap(chunks[0].Payload))
	}
}

func TestPartName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		index, total int
		want         string
	}{
		{"clip.mp3", 1, 3, "clip_part1of3.mp3"},
		{"my.voice.memo.mp3", 2, 2, "my.voice.memo_part2of2.mp3"},
		{"noext", 1, 1, "noext_part1of1"},
		{"dir/clip.mp3", 10, 12, "dir/clip_part10of12.mp3"},
	}

	for _, tt := range tests {
		if got := PartName(tt.name, tt.index, tt.total); got != tt.want {
			t.Errorf("PartName(%q, %d, %d) = %q, want %q", tt.name, tt.index, tt.total, got, tt.want)
		}
	}
}

func TestCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size, max int64
		want      int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{DefaultMaxChunkBytes * 3, 0, 3},
	}

	for _, tt := range tests {
		if got := Count(tt.size, tt.max); got != tt.want {
			t.Errorf("Count(%d, %d) = %d, want %d", tt.size, tt.max, got, tt.want)
		}
	}
}

func TestJoin_Rejects(t *testing.T) {
	t.Parallel()

	chunks, err := Split([]byte("0123456789"), 4)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		chunks []Chunk
		want   error
	}{
		{"none", nil, ErrEmptyPayload},
		{"missing part", chunks[:2], ErrNotContiguous},
		{"reordered", []Chunk{chunks[1], chunks[0], chunks[2]}, ErrNotContiguous},
		{"bad payload", []Chunk{chunks[0], {Index: 2, Total: 3, Start: 4, End: 8, Payload: []byte("x")}, chunks[2]}, ErrNotContiguous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Join(tt.chunks); !errors.Is(err, tt.want) {
				t.Errorf("Join() error = %v, want %v", err, tt.want)
			}
		})
	}
}
