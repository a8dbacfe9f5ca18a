package metadata

import (
	"bytes"
	"encoding/binary"
	"sort"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Exif/TIFF field types.
const (
	typeByte      uint16 = 1
	typeASCII     uint16 = 2
	typeShort     uint16 = 3
	typeLong      uint16 = 4
	typeRational  uint16 = 5
	typeUndefined uint16 = 7
)

// Tags written or recognized by this package.
const (
	tagImageDescription uint16 = 0x010E
	tagMake             uint16 = 0x010F
	tagModel            uint16 = 0x0110
	tagDateTime         uint16 = 0x0132
	tagExposureTime     uint16 = 0x829A
	tagFNumber          uint16 = 0x829D
	tagExifIFD          uint16 = 0x8769
	tagGPSIFD           uint16 = 0x8825
	tagISO              uint16 = 0x8827
	tagDateTimeOriginal uint16 = 0x9003
	tagFocalLength      uint16 = 0x920A
	tagUserComment      uint16 = 0x9286
	tagLensModel        uint16 = 0xA434
)

var tagNames = map[uint16]string{
	tagImageDescription: "ImageDescription",
	tagMake:             "Make",
	tagModel:            "Model",
	tagDateTime:         "DateTime",
	tagExposureTime:     "ExposureTime",
	tagFNumber:          "FNumber",
	tagISO:              "ISOSpeedRatings",
	tagDateTimeOriginal: "DateTimeOriginal",
	tagFocalLength:      "FocalLength",
	tagUserComment:      "UserComment",
	tagLensModel:        "LensModel",
}

// DateLayout is the Exif date/time representation.
const DateLayout = "2006:01:02 15:04:05"

var exifHeader = []byte("Exif\x00\x00")

// UserComment character code prefixes.
var (
	charsetASCII   = []byte("ASCII\x00\x00\x00")
	charsetUnicode = []byte("UNICODE\x00")
)

// Fields is the descriptive metadata record embedded on export.
// GPS coordinates are intentionally not part of the record.
type Fields struct {
	Description string
	Comment     string
	Date        time.Time
}

// IsZero reports whether no field is set.
func (f Fields) IsZero() bool {
	return f.Description == "" && f.Comment == "" && f.Date.IsZero()
}

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func asciiEntry(tag uint16, s string) ifdEntry {
	data := append([]byte(s), 0)
	return ifdEntry{tag: tag, typ: typeASCII, count: uint32(len(data)), data: data}
}

func longEntry(tag uint16, order binary.ByteOrder, v uint32) ifdEntry {
	data := make([]byte, 4)
	order.PutUint32(data, v)
	return ifdEntry{tag: tag, typ: typeLong, count: 1, data: data}
}

func commentEntry(s string) ifdEntry {
	var data []byte
	if isASCII(s) {
		data = append(append(data, charsetASCII...), s...)
	} else {
		enc, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().String(s)
		if err != nil {
			enc = s
		}
		data = append(append(data, charsetUnicode...), enc...)
	}
	return ifdEntry{tag: tagUserComment, typ: typeUndefined, count: uint32(len(data)), data: data}
}

// ifdSize returns the encoded size of an IFD including its data area.
func ifdSize(entries []ifdEntry) uint32 {
	size := uint32(2 + 12*len(entries) + 4)
	for _, e := range entries {
		if n := uint32(len(e.data)); n > 4 {
			size += n + n%2
		}
	}
	return size
}

// encodeIFD serializes entries as an IFD located at offset start of the
// TIFF stream. Values longer than four bytes follow the entry table.
func encodeIFD(order binary.ByteOrder, start uint32, entries []ifdEntry) []byte {
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	var head, data bytes.Buffer
	dataOff := start + uint32(2+12*len(entries)+4)

	_ = binary.Write(&head, order, uint16(len(entries)))
	for _, e := range entries {
		_ = binary.Write(&head, order, e.tag)
		_ = binary.Write(&head, order, e.typ)
		_ = binary.Write(&head, order, e.count)
		if len(e.data) <= 4 {
			var inline [4]byte
			copy(inline[:], e.data)
			head.Write(inline[:])
			continue
		}
		_ = binary.Write(&head, order, dataOff+uint32(data.Len()))
		data.Write(e.data)
		if len(e.data)%2 == 1 {
			data.WriteByte(0)
		}
	}
	_ = binary.Write(&head, order, uint32(0))
	head.Write(data.Bytes())
	return head.Bytes()
}

// buildExif returns the APP1 payload ("Exif\0\0" + TIFF) for f.
func buildExif(f Fields) []byte {
	order := binary.LittleEndian

	var ifd0, exif []ifdEntry
	if f.Description != "" {
		ifd0 = append(ifd0, asciiEntry(tagImageDescription, f.Description))
	}
	if !f.Date.IsZero() {
		stamp := f.Date.Format(DateLayout)
		ifd0 = append(ifd0, asciiEntry(tagDateTime, stamp))
		exif = append(exif, asciiEntry(tagDateTimeOriginal, stamp))
	}
	if f.Comment != "" {
		exif = append(exif, commentEntry(f.Comment))
	}

	const ifd0Start = 8
	if len(exif) > 0 {
		// The pointer entry is inline, so it does not change the data size.
		ifd0 = append(ifd0, longEntry(tagExifIFD, order, 0))
		exifStart := ifd0Start + ifdSize(ifd0)
		ifd0[len(ifd0)-1] = longEntry(tagExifIFD, order, exifStart)
	}

	var buf bytes.Buffer
	buf.Write(exifHeader)
	buf.WriteString("II")
	_ = binary.Write(&buf, order, uint16(0x2A))
	_ = binary.Write(&buf, order, uint32(ifd0Start))
	buf.Write(encodeIFD(order, ifd0Start, ifd0))
	if len(exif) > 0 {
		buf.Write(encodeIFD(order, ifd0Start+ifdSize(ifd0), exif))
	}
	return buf.Bytes()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
