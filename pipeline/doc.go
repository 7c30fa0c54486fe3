// SPDX-License-Identifier: EPL-2.0

// Package pipeline runs one audio file through analysis, conversion to MP3
// and splitting.
//
// A job moves through these states:
//
//	pending -> analyzing -> converting -> chunking -> completed
//	               |             |
//	               |             +-> completed   (output under the ceiling)
//	               +-> completed                 (already MP3, bytes unchanged)
//
// Any failure moves the job to error, which is terminal. Progress is reported
// at fixed milestones (0, 10, 30, 80, 90, 100) through the Observer.
//
// Cancelling the context stops the job at the next block or stage boundary.
package pipeline
