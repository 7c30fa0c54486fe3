// SPDX-License-Identifier: EPL-2.0

package audpipe_test

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audpipe"
	"github.com/ik5/audpipe/formats/wav"
	"github.com/ik5/audpipe/pipeline"
)

func TestConvertPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "voice.mp3")
	if err := os.WriteFile(path, []byte{0xFF, 0xFB, 0x90, 0x00}, 0o600); err != nil {
		t.Fatal(err)
	}

	job, err := audpipe.ConvertPath(context.Background(), path, audpipe.WithLogger(quiet))
	if err != nil {
		t.Fatalf("ConvertPath() error = %v", err)
	}
	if job.State != pipeline.StateCompleted || !job.Result.PassThrough || len(job.Result.Payload) != 4 {
		t.Errorf("job = %+v", job)
	}
}

func TestConvertPath_Missing(t *testing.T) {
	t.Parallel()

	_, err := audpipe.ConvertPath(context.Background(), filepath.Join(t.TempDir(), "nope.wav"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ConvertPath() error = %v, want fs.ErrNotExist", err)
	}
}

func TestConvert_Limits(t *testing.T) {
	t.Parallel()

	// Split is requested but pass-through output is never chunked.
	job, err := audpipe.ConvertPath(context.Background(), writeTemp(t, "big.mp3", 100),
		audpipe.WithSplit(true),
		audpipe.WithLimits(10, 20),
		audpipe.WithBitrate(128),
		audpipe.WithLogger(quiet),
	)
	if err != nil {
		t.Fatalf("ConvertPath() error = %v", err)
	}
	if job.Result.Parts != nil {
		t.Errorf("pass-through result was split into %d parts", len(job.Result.Parts))
	}
}

func writeTemp(t *testing.T, name string, size int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, make([]byte, size), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvert_BitrateAtVoiceRate(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := wav.WriteWAV16(&buf, 16000, 1, make([]int16, 16000)); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "memo.wav")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}

	job, err := audpipe.ConvertPath(context.Background(), path,
		audpipe.WithBitrate(192),
		audpipe.WithLogger(quiet),
	)
	if err != nil {
		t.Fatalf("ConvertPath() error = %v", err)
	}
	if job.State != pipeline.StateCompleted || job.Result.PassThrough {
		t.Fatalf("job = %+v", job)
	}
	if p := job.Result.Payload; len(p) < 4 || p[0] != 0xFF || p[1]&0xE0 != 0xE0 {
		t.Errorf("payload does not start with an MPEG frame")
	}
}
