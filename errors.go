package recipe

import (
	"errors"
	"fmt"

	"github.com/gogpu/recipe/raster"
)

// Sentinel errors.
var (
	// ErrInvalidRecipe is returned when a recipe document cannot be loaded.
	ErrInvalidRecipe = errors.New("recipe: invalid recipe")

	// ErrNoSurface aborts a run when no working canvas can be created.
	ErrNoSurface = raster.ErrNoSurface

	// ErrUnsupportedFormat is returned when an output format has no encoder.
	ErrUnsupportedFormat = raster.ErrUnsupportedFormat
)

// StepError reports an operation failure that aborted a run.
type StepError struct {
	Index       int
	StepID      string
	OperationID string
	Err         error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("recipe: step %d (%s, %s): %v", e.Index, e.StepID, e.OperationID, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// WarningCode classifies a recoverable problem.
type WarningCode string

// Warning codes recorded by the engine and built-in operations.
const (
	WarnUnknownOperation WarningCode = "unknown_operation"
	WarnMissingVariable  WarningCode = "missing_variable"
	WarnMetadata         WarningCode = "metadata"
	WarnCondition        WarningCode = "condition"
	WarnFormatFallback   WarningCode = "format_fallback"
	WarnParam            WarningCode = "param"
)

// Warning is a recoverable problem encountered during a run. StepIndex is
// -1 for problems outside the step loop.
type Warning struct {
	StepIndex int
	StepID    string
	Code      WarningCode
	Message   string
}

func (w Warning) String() string {
	if w.StepIndex < 0 {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("step %d (%s): %s: %s", w.StepIndex, w.StepID, w.Code, w.Message)
}
