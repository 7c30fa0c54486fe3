// SPDX-License-Identifier: EPL-2.0

package media

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFile_ReadAt(t *testing.T) {
	t.Parallel()

	f := NewFile("a.wav", "audio/wav", []byte("0123456789"))

	if f.Size() != 10 {
		t.Fatalf("Size() = %d, want 10", f.Size())
	}

	buf := make([]byte, 4)
	n, err := f.ReadAt(buf, 3)
	if err != nil || n != 4 || string(buf) != "3456" {
		t.Errorf("ReadAt(3) = %d, %v, %q", n, err, buf)
	}

	n, err = f.ReadAt(buf, 8)
	if err != io.EOF || n != 2 {
		t.Errorf("ReadAt(8) = %d, %v, want 2, EOF", n, err)
	}

	if _, err := f.ReadAt(buf, -1); !errors.Is(err, ErrNegativeOffset) {
		t.Errorf("ReadAt(-1) error = %v", err)
	}
}

func TestReader_Seekable(t *testing.T) {
	t.Parallel()

	f := NewFile("a.bin", "", []byte("abcdef"))
	r := Reader(f)

	if _, err := r.Seek(2, io.SeekStart); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	rest, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(rest) != "cdef" {
		t.Errorf("ReadAll() = %q, want cdef", rest)
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "voice.mp3")
	data := []byte("ID3 not really an mp3")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()

	if f.Name() != "voice.mp3" {
		t.Errorf("Name() = %q", f.Name())
	}
	if f.Size() != int64(len(data)) {
		t.Errorf("Size() = %d, want %d", f.Size(), len(data))
	}

	got, err := ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ReadAll() = %q", got)
	}
}

func TestFormatOf(t *testing.T) {
	t.Parallel()

	// Extension wins over the declared type.
	f, err := FormatOf(NewFile("clip.ogg", "audio/mpeg", nil))
	if err != nil || f != Ogg {
		t.Errorf("FormatOf(clip.ogg) = %v, %v", f, err)
	}

	// No extension: declared type.
	f, err = FormatOf(NewFile("blob", "audio/flac", nil))
	if err != nil || f != FLAC {
		t.Errorf("FormatOf(blob, audio/flac) = %v, %v", f, err)
	}

	// Unknown extension is never sniffed.
	wavHeader := []byte("RIFF\x24\x00\x00\x00WAVEfmt ")
	_, err = FormatOf(NewFile("clip.txt", "", wavHeader))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("FormatOf(clip.txt) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestSniff(t *testing.T) {
	t.Parallel()

	header := make([]byte, 44)
	copy(header, "RIFF")
	copy(header[8:], "WAVEfmt ")

	f, err := FormatOf(NewFile("upload", "", header))
	if err != nil {
		t.Fatalf("FormatOf() error = %v", err)
	}
	if f != WAV {
		t.Errorf("FormatOf() = %v, want %v", f, WAV)
	}

	_, err = Sniff(NewFile("upload", "", []byte("plain text, nothing to hear")))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Sniff(text) error = %v, want ErrUnsupportedFormat", err)
	}
}
