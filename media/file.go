// SPDX-License-Identifier: EPL-2.0

package media

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// File is a read-only, random-access handle to an input file. The pipeline
// never writes to it or closes it; ownership stays with the caller.
type File interface {
	io.ReaderAt
	Name() string
	// Type is the declared MIME-like type; it may be empty.
	Type() string
	Size() int64
}

// Reader returns a fresh sequential reader over the whole file. The returned
// *io.SectionReader also implements io.Seeker.
func Reader(f File) *io.SectionReader {
	return io.NewSectionReader(f, 0, f.Size())
}

// ReadAll returns the full contents of f.
func ReadAll(f File) ([]byte, error) {
	if b, ok := f.(*bytesFile); ok {
		return b.data, nil
	}
	data := make([]byte, f.Size())
	if _, err := f.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading %s: %w", f.Name(), err)
	}
	return data, nil
}

type bytesFile struct {
	name string
	typ  string
	data []byte
}

var _ File = (*bytesFile)(nil)

// NewFile wraps an in-memory payload. data is not copied and must not be
// modified while the File is in use.
func NewFile(name, typ string, data []byte) File {
	return &bytesFile{name: name, typ: typ, data: data}
}

func (b *bytesFile) Name() string { return b.name }
func (b *bytesFile) Type() string { return b.typ }
func (b *bytesFile) Size() int64  { return int64(len(b.data)) }

func (b *bytesFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ErrNegativeOffset
	}
	if off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// OSFile is a File backed by a file on disk.
type OSFile struct {
	f    *os.File
	name string
	typ  string
	size int64
}

var _ File = (*OSFile)(nil)

// Open opens path for reading. The declared type is guessed from the
// extension using the system MIME table and may be empty.
func Open(path string) (*OSFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w", err)
	}

	return &OSFile{
		f:    f,
		name: filepath.Base(path),
		typ:  mime.TypeByExtension(filepath.Ext(path)),
		size: st.Size(),
	}, nil
}

func (o *OSFile) Name() string { return o.name }
func (o *OSFile) Type() string { return o.typ }
func (o *OSFile) Size() int64  { return o.size }

func (o *OSFile) ReadAt(p []byte, off int64) (int, error) {
	return o.f.ReadAt(p, off)
}

func (o *OSFile) Close() error {
	err := o.f.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
