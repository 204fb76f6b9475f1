package backdrop

import (
	"log/slog"
	"sync/atomic"
)

var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger sets the logger used by the package. Passing nil restores
// slog.Default().
func SetLogger(l *slog.Logger) {
	pkgLogger.Store(l)
}

func slogger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}
