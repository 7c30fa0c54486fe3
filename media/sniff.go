// SPDX-License-Identifier: EPL-2.0

package media

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how many leading bytes are handed to the content detector.
const sniffLen = 3072

// Sniff detects the format from the leading bytes of f.
func Sniff(f File) (Format, error) {
	head := make([]byte, min(int64(sniffLen), f.Size()))
	n, err := f.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return Unknown, fmt.Errorf("sniffing %s: %w", f.Name(), err)
	}

	for m := mimetype.Detect(head[:n]); m != nil; m = m.Parent() {
		if format, ok := ParseTag(m.String()); ok {
			return format, nil
		}
	}

	return Unknown, fmt.Errorf("%w: cannot detect content of %q", ErrUnsupportedFormat, f.Name())
}

// FormatOf resolves the format of f. The extension wins when present; an
// unknown extension is an error. Files without an extension fall back to the
// declared type and then to content sniffing.
func FormatOf(f File) (Format, error) {
	if filepath.Ext(f.Name()) != "" {
		return FormatOfName(f.Name())
	}

	if format, ok := ParseTag(f.Type()); ok {
		return format, nil
	}

	return Sniff(f)
}
