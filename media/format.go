// SPDX-License-Identifier: EPL-2.0

package media

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a container/codec family known to the pipeline.
type Format int

const (
	Unknown Format = iota
	MP3
	Ogg
	Opus
	FLAC
	M4A
	WAV
	WebM
	MP4
	AIFF

	numFormats
)

// MP3Tag is the canonical tag of the delivery format.
const MP3Tag = "audio/mpeg"

type formatInfo struct {
	tag        string
	extensions []string
	aliases    []string
}

// formats is indexed by Format; every constant below numFormats needs a row.
var formats = [numFormats]formatInfo{
	Unknown: {tag: ""},
	MP3:     {tag: MP3Tag, extensions: []string{".mp3"}, aliases: []string{"audio/mp3", "audio/mpeg3", "audio/x-mpeg-3"}},
	Ogg:     {tag: "audio/ogg", extensions: []string{".ogg", ".oga"}, aliases: []string{"application/ogg", "audio/vorbis"}},
	Opus:    {tag: "audio/opus", extensions: []string{".opus"}},
	FLAC:    {tag: "audio/flac", extensions: []string{".flac"}, aliases: []string{"audio/x-flac"}},
	M4A:     {tag: "audio/m4a", extensions: []string{".m4a"}, aliases: []string{"audio/mp4", "audio/x-m4a", "audio/aac"}},
	WAV:     {tag: "audio/wav", extensions: []string{".wav"}, aliases: []string{"audio/x-wav", "audio/wave", "audio/vnd.wave"}},
	WebM:    {tag: "audio/webm", extensions: []string{".webm"}, aliases: []string{"video/webm"}},
	MP4:     {tag: "video/mp4", extensions: []string{".mp4"}},
	AIFF:    {tag: "audio/aiff", extensions: []string{".aiff", ".aif"}, aliases: []string{"audio/x-aiff"}},
}

var (
	byExtension = make(map[string]Format)
	byTag       = make(map[string]Format)
)

func init() {
	for f := MP3; f < numFormats; f++ {
		info := formats[f]
		byTag[info.tag] = f
		for _, alias := range info.aliases {
			byTag[alias] = f
		}
		for _, ext := range info.extensions {
			byExtension[ext] = f
		}
	}
}

// String returns the canonical tag, e.g. "audio/mpeg".
func (f Format) String() string {
	if f <= Unknown || f >= numFormats {
		return "unknown"
	}
	return formats[f].tag
}

// Extension returns the preferred file extension including the dot.
func (f Format) Extension() string {
	if f <= Unknown || f >= numFormats {
		return ""
	}
	return formats[f].extensions[0]
}

// IsMP3 reports whether f is already the delivery format.
func (f Format) IsMP3() bool { return f == MP3 }

// Formats lists every known format in declaration order.
func Formats() []Format {
	out := make([]Format, 0, numFormats-1)
	for f := MP3; f < numFormats; f++ {
		out = append(out, f)
	}
	return out
}

// LookupExtension resolves ext (".ogg", "OGG", "ogg") to a Format.
func LookupExtension(ext string) (Format, bool) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return Unknown, false
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	f, ok := byExtension[ext]
	return f, ok
}

// ParseTag resolves a MIME-like tag, ignoring parameters such as "; codecs=opus".
func ParseTag(tag string) (Format, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexByte(tag, ';'); i >= 0 {
		tag = strings.TrimSpace(tag[:i])
	}
	f, ok := byTag[tag]
	return f, ok
}

// FormatOfName resolves the format from the extension of name.
func FormatOfName(name string) (Format, error) {
	ext := filepath.Ext(name)
	if f, ok := LookupExtension(ext); ok {
		return f, nil
	}
	if ext == "" {
		return Unknown, fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, name)
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}
