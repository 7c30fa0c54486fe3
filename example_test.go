// SPDX-License-Identifier: EPL-2.0

package audpipe_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ik5/audpipe"
	"github.com/ik5/audpipe/chunk"
	"github.com/ik5/audpipe/encoder"
	"github.com/ik5/audpipe/media"
	"github.com/ik5/audpipe/pipeline"
	"github.com/ik5/audpipe/utils"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// MP3 input is returned as is.
func Example_passThrough() {
	f := media.NewFile("voice.mp3", "audio/mpeg", []byte("...mp3 frames..."))

	job, err := audpipe.Convert(context.Background(), f, audpipe.WithLogger(quiet))
	if err != nil {
		fmt.Println(job.ErrorDetail)
		return
	}

	fmt.Println(job.State, job.Result.Name, job.Result.PassThrough)
	// Output: completed voice.mp3 true
}

// Failures carry the original file name.
func Example_categoryMismatch() {
	f := media.NewFile("song.flac", "", []byte{1, 2, 3})

	job, _ := audpipe.Convert(context.Background(), f,
		audpipe.WithCategory(pipeline.CategoryOgg),
		audpipe.WithLogger(quiet),
	)

	fmt.Println(job.State)
	fmt.Println(job.ErrorDetail)
	// Output:
	// error
	// song.flac: file does not match conversion category: song.flac is audio/flac, want ogg
}

func Example_progress() {
	f := media.NewFile("empty.wav", "", nil)

	_, _ = audpipe.Convert(context.Background(), f,
		audpipe.WithLogger(quiet),
		audpipe.WithObserver(func(j pipeline.Job) {
			fmt.Printf("%s %d%%\n", j.State, j.Progress)
		}),
	)
	// Output:
	// pending 0%
	// error 0%
}

func Example_partNames() {
	parts, _ := chunk.Split(make([]byte, 52), 20)
	for _, p := range parts {
		fmt.Println(p.Name("clip.mp3"), p.Len())
	}
	// Output:
	// clip_part1of3.mp3 20
	// clip_part2of3.mp3 20
	// clip_part3of3.mp3 12
}

func Example_channelMode() {
	fmt.Println(encoder.ModeFor(1), encoder.ModeFor(2))
	fmt.Println(utils.Float32ToInt16(-1), utils.Float32ToInt16(1))
	// Output:
	// mono joint-stereo
	// -32768 32767
}
