// SPDX-License-Identifier: EPL-2.0

// Package audpipe normalizes audio files for transcription: anything that is
// not already MP3 is decoded, re-encoded to MP3 and, when the result is too
// large for one upload, split into ordered parts.
//
// # Supported Formats
//
// Input formats are resolved from the file extension:
//   - MP3 (passed through untouched)
//   - WAV, AIFF (PCM 8/16/24/32-bit) via formats/wav and formats/aiff
//   - Ogg Vorbis via formats/vorbis
//   - FLAC via formats/flac
//   - Opus, M4A, WebM and MP4 via formats/ffmpeg (needs ffmpeg and ffprobe)
//
// # Quick Start
//
//	f, _ := media.Open("interview.ogg")
//	defer f.Close()
//
//	job, err := audpipe.Convert(ctx, f, audpipe.WithSplit(true))
//	if err != nil {
//		log.Fatal(job.ErrorDetail)
//	}
//	for _, part := range job.Result.Parts {
//		os.WriteFile(part.Name(job.Result.Name), part.Payload, 0o644)
//	}
//
// # Building Blocks
//
// Each stage is usable on its own:
//
//	md, _ := analyze.New(nil, nil).Analyze(ctx, f)   // format, size, NeedsConversion
//	pcm, _ := decode.New(decode.Options{}).Decode(ctx, f)
//	enc, _ := encoder.Encode(ctx, pcm, encoder.Options{})
//	parts, _ := chunk.Split(enc.Bytes(), chunk.DefaultMaxChunkBytes)
//
// The pipeline package strings them together as a job with states, progress
// milestones and metrics; cmd/audpipe is the command line front end.
package audpipe
