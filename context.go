package recipe

import (
	"fmt"
	"image"
	"path"
	"strings"
)

// Context is the mutable per-run state shared by the engine and the
// operations of one run. It is owned by exactly one run.
type Context struct {
	// Source is the decoded input image.
	Source image.Image

	// SourceBytes holds the encoded input, when available, for
	// operations that read embedded metadata.
	SourceBytes []byte

	// Filename is the input file name; it names the default artifact and
	// is the base of checkpoint names.
	Filename string

	// Metadata is the descriptive record of the image. Operations may
	// read and write it; the injector embeds it into exported files.
	Metadata map[string]any

	// Variables holds named canvas snapshots.
	Variables *Variables

	// OutputSubfolder is where artifacts go unless an export step names
	// its own subfolder. The default artifact always uses it.
	OutputSubfolder string

	// Warnings collects recoverable problems in the order they occurred.
	Warnings []Warning

	stepIndex int
	stepID    string
}

// NewContext returns a run context for src.
func NewContext(src image.Image, filename string) *Context {
	return &Context{
		Source:    src,
		Filename:  filename,
		Metadata:  make(map[string]any),
		Variables: NewVariables(),
		stepIndex: -1,
	}
}

// Warn records a warning against the current step and logs it.
func (rc *Context) Warn(code WarningCode, format string, args ...any) {
	w := Warning{
		StepIndex: rc.stepIndex,
		StepID:    rc.stepID,
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
	}
	rc.Warnings = append(rc.Warnings, w)
	warningsTotal.WithLabelValues(string(code)).Inc()
	Logger().Warn("recipe: "+w.Message,
		"code", string(code),
		"step", w.StepIndex,
		"step_id", w.StepID,
		"file", rc.Filename,
	)
}

// Meta returns a metadata value. Dotted keys that are not present as-is
// are resolved through nested maps ("gps.lat").
func (rc *Context) Meta(key string) (any, bool) {
	return lookupMeta(rc.Metadata, key)
}

// SetMeta stores a metadata value.
func (rc *Context) SetMeta(key string, v any) {
	if rc.Metadata == nil {
		rc.Metadata = make(map[string]any)
	}
	rc.Metadata[key] = v
}

// BaseName returns Filename without directory and extension. A name with
// no extension is returned whole.
func (rc *Context) BaseName() string {
	name := path.Base(strings.ReplaceAll(rc.Filename, "\\", "/"))
	if name == "." || name == "/" {
		return "image"
	}
	if ext := path.Ext(name); ext != "" && ext != name {
		return strings.TrimSuffix(name, ext)
	}
	return name
}

func (rc *Context) enterStep(i int, id string) {
	rc.stepIndex, rc.stepID = i, id
}

func (rc *Context) leaveSteps() {
	rc.stepIndex, rc.stepID = -1, ""
}

func lookupMeta(md map[string]any, key string) (any, bool) {
	if md == nil {
		return nil, false
	}
	if v, ok := md[key]; ok {
		return v, true
	}
	head, rest, found := strings.Cut(key, ".")
	if !found {
		return nil, false
	}
	switch next := md[head].(type) {
	case map[string]any:
		return lookupMeta(next, rest)
	case Params:
		return lookupMeta(next, rest)
	}
	return nil, false
}
