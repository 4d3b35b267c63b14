// Package qlog holds the single process-wide logger shared by every
// protocol-engine package, the same way tensor-usbdl's cmd wires up one
// *logger.Logger and passes it around by convention rather than injecting it
// through every call.
package qlog

import (
	"sync"

	"github.com/JoshuaDoes/logger"
)

var (
	mu    sync.Mutex
	log   *logger.Logger
	level = 2
)

// Init sets the verbosity the shared logger will be constructed with. It
// must be called, if at all, before the first call to L(); cmd/qdl calls it
// while parsing --debug, before touching any protocol-engine package.
func Init(verbosity int) {
	mu.Lock()
	defer mu.Unlock()
	level = verbosity
}

// L returns the shared logger, constructing it on first use.
func L() *logger.Logger {
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		log = logger.NewLogger("qdl", level)
	}
	return log
}
