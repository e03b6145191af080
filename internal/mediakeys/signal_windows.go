package mediakeys

import "os"

// NewSignalSource has nothing to map on Windows; the source only ends with ctx.
func NewSignalSource() *SignalSource {
	return &SignalSource{Mapping: map[os.Signal]Key{}}
}
