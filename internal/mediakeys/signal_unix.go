//go:build !windows

package mediakeys

import (
	"os"
	"syscall"
)

func NewSignalSource() *SignalSource {
	return &SignalSource{Mapping: map[os.Signal]Key{
		syscall.SIGUSR1: PlayPause,
		syscall.SIGUSR2: Next,
	}}
}
