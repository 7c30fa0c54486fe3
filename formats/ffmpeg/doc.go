// SPDX-License-Identifier: EPL-2.0

// Package ffmpeg decodes containers without a pure Go decoder (Opus, M4A/AAC,
// WebM, MP4) by shelling out to ffprobe and ffmpeg.
//
// The input is spooled to a temporary file so both tools can seek it, probed
// for the first audio stream and transcoded to interleaved f32le on stdout. Both binaries must be
// installed; their paths are configurable. Tests replace the command runner
// with WithRunner.
package ffmpeg
