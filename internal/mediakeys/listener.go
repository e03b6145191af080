// Package mediakeys turns hardware or desktop media-key presses into
// playback commands, independently of the UI loop.
package mediakeys

import (
	"context"

	"go.uber.org/zap"

	"github.com/babycommando/afroradio/internal/station"
)

type Key int

const (
	PlayPause Key = iota
	Next
	Previous
	Stop
)

func (k Key) String() string {
	switch k {
	case PlayPause:
		return "play/pause"
	case Next:
		return "next"
	case Previous:
		return "previous"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// Source delivers key presses until ctx ends. The returned channel is
// closed when the source is exhausted.
type Source interface {
	Keys(ctx context.Context) <-chan Key
}

// Player is the subset of the playback controller that keys drive.
type Player interface {
	TogglePlay() error
	Stop()
	NextStation() (station.Station, error)
	PreviousStation() (station.Station, error)
}

type Listener struct {
	src    Source
	player Player
	log    *zap.Logger
}

func New(src Source, player Player, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{src: src, player: player, log: logger.Named("mediakeys")}
}

// Run dispatches keys until ctx is cancelled or the source closes. Command
// errors are logged and never stop the loop.
func (l *Listener) Run(ctx context.Context) {
	keys := l.src.Keys(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case k, ok := <-keys:
			if !ok {
				return
			}
			l.handle(k)
		}
	}
}

func (l *Listener) handle(k Key) {
	var err error
	switch k {
	case PlayPause:
		err = l.player.TogglePlay()
	case Next:
		_, err = l.player.NextStation()
	case Previous:
		_, err = l.player.PreviousStation()
	case Stop:
		l.player.Stop()
	default:
		l.log.Warn("unknown media key", zap.Int("key", int(k)))
		return
	}
	if err != nil {
		l.log.Warn("media key command failed", zap.Stringer("key", k), zap.Error(err))
		return
	}
	l.log.Debug("media key handled", zap.Stringer("key", k))
}

/* ─────────────  Sources  ───────────── */

// ChanSource forwards keys pushed with Press.
type ChanSource struct {
	ch chan Key
}

func NewChanSource(buffer int) *ChanSource {
	return &ChanSource{ch: make(chan Key, buffer)}
}

// Press queues k, dropping it if the buffer is full.
func (s *ChanSource) Press(k Key) bool {
	select {
	case s.ch <- k:
		return true
	default:
		return false
	}
}

func (s *ChanSource) Keys(_ context.Context) <-chan Key {
	return s.ch
}
