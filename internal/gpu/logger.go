package gpu

import (
	"log/slog"
	"sync/atomic"
)

var discard = slog.New(slog.DiscardHandler)

// active is nil until the compositor installs a logger.
var active atomic.Pointer[slog.Logger]

// slogger returns the logger pipelines report through.
func slogger() *slog.Logger {
	if l := active.Load(); l != nil {
		return l
	}
	return discard
}

// SetLogger installs l for pipeline and staging diagnostics. A nil l
// silences them.
func SetLogger(l *slog.Logger) {
	active.Store(l)
}
