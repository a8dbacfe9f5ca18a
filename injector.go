package recipe

import (
	"strings"
	"time"

	"github.com/gogpu/recipe/metadata"
	"github.com/gogpu/recipe/raster"
)

// Injector embeds the run's descriptive metadata into encoded output.
// On failure the engine keeps the unmodified bytes and records a warning.
type Injector interface {
	Inject(data []byte, f raster.Format, md map[string]any) ([]byte, error)
}

// InjectorFunc adapts a function to the Injector interface.
type InjectorFunc func(data []byte, f raster.Format, md map[string]any) ([]byte, error)

// Inject calls fn.
func (fn InjectorFunc) Inject(data []byte, f raster.Format, md map[string]any) ([]byte, error) {
	return fn(data, f, md)
}

// ExifInjector writes description, comment and capture date into JPEG
// output. Other formats pass through unchanged. GPS is not written.
type ExifInjector struct{}

// Inject implements Injector.
func (ExifInjector) Inject(data []byte, f raster.Format, md map[string]any) ([]byte, error) {
	if !f.SupportsMetadata() {
		return data, nil
	}
	return metadata.Inject(data, FieldsFromMetadata(md))
}

// Metadata keys read by FieldsFromMetadata, in lookup order.
var (
	descriptionKeys = []string{"description", "ImageDescription"}
	commentKeys     = []string{"comment", "UserComment"}
	dateKeys        = []string{"date", "Date_Time_Original", "DateTimeOriginal"}
)

// FieldsFromMetadata maps a metadata record onto the embedded fields.
func FieldsFromMetadata(md map[string]any) metadata.Fields {
	var f metadata.Fields
	if v, ok := firstMeta(md, descriptionKeys); ok {
		f.Description = toString(v)
	}
	if v, ok := firstMeta(md, commentKeys); ok {
		f.Comment = toString(v)
	}
	if v, ok := firstMeta(md, dateKeys); ok {
		f.Date, _ = ParseTime(v)
	}
	return f
}

func firstMeta(md map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := md[k]; ok && v != nil && toString(v) != "" {
			return v, true
		}
	}
	return nil, false
}

var timeLayouts = []string{
	metadata.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime accepts a time.Time, an Exif date string, RFC 3339 and the
// common ISO date forms. Strings without a zone are local time.
func ParseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t != nil {
			return *t, !t.IsZero()
		}
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}
