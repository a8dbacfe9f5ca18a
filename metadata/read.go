package metadata

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
)

// Read returns the recognized Exif tags of a JPEG stream keyed by their
// Exif names (Make, Model, DateTimeOriginal, FNumber, ...). Values are
// rendered as display strings. GPS data is not decoded.
func Read(data []byte) (map[string]string, error) {
	segs, _, err := scanHeader(data)
	if err != nil {
		return nil, err
	}
	for _, s := range segs {
		if isExifSegment(data, s) {
			return parseTIFF(s.payload(data)[len(exifHeader):])
		}
	}
	return nil, ErrNoExif
}

// ReadFields extracts the descriptive record written by Inject.
func ReadFields(data []byte) (Fields, error) {
	tags, err := Read(data)
	if err != nil {
		return Fields{}, err
	}
	f := Fields{
		Description: tags["ImageDescription"],
		Comment:     tags["UserComment"],
	}
	stamp := tags["DateTimeOriginal"]
	if stamp == "" {
		stamp = tags["DateTime"]
	}
	if stamp != "" {
		if t, err := time.ParseInLocation(DateLayout, stamp, time.Local); err == nil {
			f.Date = t
		}
	}
	return f, nil
}

type tiffReader struct {
	data  []byte
	order binary.ByteOrder
}

func parseTIFF(data []byte) (map[string]string, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: short TIFF header", ErrMalformed)
	}
	r := &tiffReader{data: data}
	switch string(data[:2]) {
	case "II":
		r.order = binary.LittleEndian
	case "MM":
		r.order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: bad byte order %q", ErrMalformed, data[:2])
	}
	if r.order.Uint16(data[2:]) != 0x2A {
		return nil, fmt.Errorf("%w: bad TIFF magic", ErrMalformed)
	}

	tags := make(map[string]string)
	exifOff, err := r.readIFD(r.order.Uint32(data[4:]), tags)
	if err != nil {
		return nil, err
	}
	if exifOff != 0 {
		if _, err := r.readIFD(exifOff, tags); err != nil {
			return nil, err
		}
	}
	return tags, nil
}

// readIFD decodes the known tags of one IFD into tags and returns the Exif
// sub-IFD offset when the IFD carries one.
func (r *tiffReader) readIFD(off uint32, tags map[string]string) (uint32, error) {
	if int(off)+2 > len(r.data) {
		return 0, fmt.Errorf("%w: IFD offset %d out of range", ErrMalformed, off)
	}
	n := int(r.order.Uint16(r.data[off:]))
	base := int(off) + 2
	if base+12*n > len(r.data) {
		return 0, fmt.Errorf("%w: IFD with %d entries truncated", ErrMalformed, n)
	}

	var exifOff uint32
	for i := 0; i < n; i++ {
		e := r.data[base+12*i : base+12*i+12]
		tag := r.order.Uint16(e[0:])
		typ := r.order.Uint16(e[2:])
		count := r.order.Uint32(e[4:])

		if tag == tagExifIFD {
			exifOff = r.order.Uint32(e[8:])
			continue
		}
		name, ok := tagNames[tag]
		if !ok {
			continue
		}
		val, ok := r.value(e[8:12], typ, count)
		if !ok {
			continue
		}
		if s := r.format(tag, typ, val); s != "" {
			tags[name] = s
		}
	}
	return exifOff, nil
}

// value returns the raw bytes of an entry, following the offset for
// values longer than four bytes.
func (r *tiffReader) value(field []byte, typ uint16, count uint32) ([]byte, bool) {
	var size uint32
	switch typ {
	case typeByte, typeASCII, typeUndefined:
		size = 1
	case typeShort:
		size = 2
	case typeLong:
		size = 4
	case typeRational:
		size = 8
	default:
		return nil, false
	}
	total := uint64(size) * uint64(count)
	if total <= 4 {
		return field[:total], true
	}
	off := uint64(r.order.Uint32(field))
	if off+total > uint64(len(r.data)) {
		return nil, false
	}
	return r.data[off : off+total], true
}

func (r *tiffReader) format(tag, typ uint16, val []byte) string {
	switch typ {
	case typeASCII:
		return strings.TrimSpace(string(bytes.TrimRight(val, "\x00")))
	case typeShort:
		if len(val) >= 2 {
			return strconv.Itoa(int(r.order.Uint16(val)))
		}
	case typeLong:
		if len(val) >= 4 {
			return strconv.FormatUint(uint64(r.order.Uint32(val)), 10)
		}
	case typeRational:
		if len(val) < 8 {
			return ""
		}
		num, den := r.order.Uint32(val), r.order.Uint32(val[4:])
		if den == 0 {
			return ""
		}
		v := float64(num) / float64(den)
		switch tag {
		case tagFNumber:
			return "f/" + strconv.FormatFloat(v, 'g', 3, 64)
		case tagExposureTime:
			if num == 1 || v < 1 && num != 0 && den%num == 0 {
				return fmt.Sprintf("1/%d", den/num)
			}
			return strconv.FormatFloat(v, 'g', 4, 64)
		case tagFocalLength:
			return strconv.FormatFloat(v, 'g', 4, 64) + " mm"
		}
		return strconv.FormatFloat(v, 'g', 6, 64)
	case typeUndefined:
		if tag == tagUserComment {
			return decodeComment(val)
		}
	}
	return ""
}

func decodeComment(val []byte) string {
	if len(val) < 8 {
		return ""
	}
	code, body := val[:8], val[8:]
	switch {
	case bytes.Equal(code, charsetUnicode):
		s, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(body)
		if err != nil {
			return ""
		}
		return strings.TrimRight(string(s), "\x00")
	default:
		return strings.TrimSpace(string(bytes.TrimRight(body, "\x00")))
	}
}
