package metadata

import (
	"bytes"
	"errors"
	"fmt"
)

// Errors returned by Inject and Read.
var (
	ErrNotJPEG   = errors.New("metadata: not a JPEG stream")
	ErrMalformed = errors.New("metadata: malformed JPEG stream")
	ErrNoExif    = errors.New("metadata: no Exif segment")
	ErrTooLarge  = errors.New("metadata: Exif segment exceeds 64 KiB")
)

// JPEG markers.
const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP0 = 0xE0
	markerAPP1 = 0xE1
	markerTEM  = 0x01
	markerRST0 = 0xD0
	markerRST7 = 0xD7
)

// segment is a marker segment located in a JPEG stream. start and end
// span the whole segment including the marker bytes.
type segment struct {
	marker     byte
	start, end int
}

func (s segment) payload(data []byte) []byte { return data[s.start+4 : s.end] }

// IsJPEG reports whether data starts with a JPEG SOI marker.
func IsJPEG(data []byte) bool {
	return len(data) >= 2 && data[0] == 0xFF && data[1] == markerSOI
}

// scanHeader returns the marker segments preceding the image scan and the
// offset where the scan (SOS) starts.
func scanHeader(data []byte) ([]segment, int, error) {
	if !IsJPEG(data) {
		return nil, 0, ErrNotJPEG
	}
	var segs []segment
	pos := 2
	for pos < len(data) {
		if data[pos] != 0xFF {
			return nil, 0, fmt.Errorf("%w: expected marker at offset %d", ErrMalformed, pos)
		}
		// Fill bytes.
		for pos < len(data) && data[pos] == 0xFF {
			pos++
		}
		if pos >= len(data) {
			break
		}
		marker := data[pos]
		start := pos - 1
		pos++
		switch {
		case marker == markerSOS, marker == markerEOI:
			return segs, start, nil
		case marker == markerTEM, marker >= markerRST0 && marker <= markerRST7:
			continue
		}
		if pos+2 > len(data) {
			return nil, 0, fmt.Errorf("%w: truncated segment length", ErrMalformed)
		}
		length := int(data[pos])<<8 | int(data[pos+1])
		if length < 2 || pos+length > len(data) {
			return nil, 0, fmt.Errorf("%w: bad segment length %d", ErrMalformed, length)
		}
		pos += length
		segs = append(segs, segment{marker: marker, start: start, end: pos})
	}
	return nil, 0, fmt.Errorf("%w: no image scan", ErrMalformed)
}

func isExifSegment(data []byte, s segment) bool {
	return s.marker == markerAPP1 && bytes.HasPrefix(s.payload(data), exifHeader)
}

// Inject embeds f into a JPEG stream as an APP1 Exif segment, replacing
// any Exif segment already present. The new segment is placed after the
// leading APP0 (JFIF) segments. Empty fields leave data untouched.
//
// On error the caller should keep the original bytes; Inject never
// modifies data in place.
func Inject(data []byte, f Fields) ([]byte, error) {
	segs, scan, err := scanHeader(data)
	if err != nil {
		return nil, err
	}
	if f.IsZero() {
		return data, nil
	}

	payload := buildExif(f)
	if len(payload)+2 > 0xFFFF {
		return nil, ErrTooLarge
	}

	var out bytes.Buffer
	out.Grow(len(data) + len(payload) + 4)
	out.Write(data[:2])

	i := 0
	for ; i < len(segs) && segs[i].marker == markerAPP0; i++ {
		out.Write(data[segs[i].start:segs[i].end])
	}
	out.Write([]byte{0xFF, markerAPP1, byte((len(payload) + 2) >> 8), byte(len(payload) + 2)})
	out.Write(payload)
	for ; i < len(segs); i++ {
		if isExifSegment(data, segs[i]) {
			continue
		}
		out.Write(data[segs[i].start:segs[i].end])
	}
	out.Write(data[scan:])
	return out.Bytes(), nil
}
