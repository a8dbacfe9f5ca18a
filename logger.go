package recipe

import (
	"log/slog"
	"sync/atomic"
)

// silent drops every record. Its handler reports every level as disabled,
// so log calls return before building attributes.
var silent = slog.New(slog.DiscardHandler)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(silent)
}

// SetLogger routes log output of the engine, the operation catalog and the
// batch runner to l. A nil l turns logging off again, which is also the
// state a fresh process starts in. It may be called while runs are active.
//
// Runs log step dispatch and condition misses at debug, batch summaries at
// info, and skipped or unknown operations, missing variables and failed
// metadata injection at warn.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)
}

// Logger returns the logger installed by SetLogger.
func Logger() *slog.Logger {
	return current.Load()
}
