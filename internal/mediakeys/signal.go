package mediakeys

import (
	"context"
	"os"
	"os/signal"
)

// SignalSource maps SIGUSR1 to PlayPause and SIGUSR2 to Next, so a desktop
// hotkey daemon can drive the player with `pkill -USR1 afroradio`.
type SignalSource struct {
	Mapping map[os.Signal]Key
}

func (s *SignalSource) Keys(ctx context.Context) <-chan Key {
	sigs := make(chan os.Signal, 4)
	watched := make([]os.Signal, 0, len(s.Mapping))
	for sig := range s.Mapping {
		watched = append(watched, sig)
	}
	// Notify with no signals would relay every signal
	if len(watched) > 0 {
		signal.Notify(sigs, watched...)
	}

	out := make(chan Key)
	go func() {
		defer close(out)
		defer signal.Stop(sigs)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigs:
				k, ok := s.Mapping[sig]
				if !ok {
					continue
				}
				select {
				case out <- k:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
