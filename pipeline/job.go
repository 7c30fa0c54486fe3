// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/ik5/audpipe/analyze"
	"github.com/ik5/audpipe/chunk"
	"github.com/ik5/audpipe/media"
)

// State is the lifecycle stage of a job.
type State string

const (
	StatePending    State = "pending"
	StateAnalyzing  State = "analyzing"
	StateConverting State = "converting"
	StateChunking   State = "chunking"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

// IsTerminal reports whether no further transition can happen.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateError
}

// Progress milestones in percent.
const (
	ProgressPending    = 0
	ProgressAnalyzing  = 10
	ProgressConverting = 30
	ProgressEncoded    = 80
	ProgressChunking   = 90
	ProgressCompleted  = 100
)

// Category restricts which inputs a request converts.
type Category int

const (
	// CategoryAny converts every supported format.
	CategoryAny Category = iota
	// CategoryOgg converts only Ogg files.
	CategoryOgg
	// CategoryOther converts everything except Ogg files.
	CategoryOther
)

func (c Category) String() string {
	switch c {
	case CategoryAny:
		return "any"
	case CategoryOgg:
		return "ogg"
	case CategoryOther:
		return "other"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory accepts the names returned by String.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return CategoryAny, nil
	case "ogg":
		return CategoryOgg, nil
	case "other":
		return CategoryOther, nil
	default:
		return CategoryAny, fmt.Errorf("unknown category %q", s)
	}
}

// Accepts reports whether a file of format f belongs to c.
func (c Category) Accepts(f media.Format) bool {
	switch c {
	case CategoryOgg:
		return f == media.Ogg
	case CategoryOther:
		return f != media.Ogg
	default:
		return true
	}
}

// Request describes what the caller wants done with one file.
type Request struct {
	Category Category
	// Split allows cutting output above the ceiling into parts.
	Split bool
}

// Result is the output of a completed job. Parts is set only when the
// output was split; each part's Payload aliases Payload.
type Result struct {
	Name        string
	Format      media.Format
	Payload     []byte
	PassThrough bool
	Parts       []chunk.Chunk
}

// Job is the record of one Run. Observers and callers get copies.
type Job struct {
	ID           string
	OriginalName string
	Category     Category
	State        State
	Progress     int
	Metadata     analyze.Metadata
	Result       *Result
	Err          error
	ErrorDetail  string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration is the wall time spent so far, or in total once finished.
func (j Job) Duration() time.Duration {
	if j.FinishedAt.IsZero() {
		return time.Since(j.StartedAt)
	}
	return j.FinishedAt.Sub(j.StartedAt)
}

// Observer is called with a snapshot after every change of a job.
type Observer func(Job)
