package player

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babycommando/afroradio/internal/station"
)

const streamA = "https://example.com/stream"
const streamB = "http://radio.example.org:8000/live.mp3"

func TestValidateURL(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"", ErrEmptyURL},
		{"   ", ErrEmptyURL},
		{"not-a-url", ErrMalformedURL},
		{"ftp://example.com/a", ErrMalformedURL},
		{"https://", ErrMalformedURL},
		{"http://%zz", ErrMalformedURL},
		{"/relative/path", ErrMalformedURL},
		{streamA, nil},
		{streamB, nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := ValidateURL(tt.in)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestController_PlayRejectsInvalidURLs(t *testing.T) {
	eng := &fakeEngine{}
	c := NewController(eng, nil)
	require.NoError(t, c.Play(streamA))

	assert.ErrorIs(t, c.Play(""), ErrEmptyURL)
	assert.ErrorIs(t, c.Play("not-a-url"), ErrMalformedURL)

	assert.Equal(t, streamA, c.CurrentURL())
	assert.True(t, c.IsPlaying())
	assert.Equal(t, 1, eng.count())
}

func TestController_PlaySameURLResumesHandle(t *testing.T) {
	eng := &fakeEngine{}
	c := NewController(eng, nil)

	require.NoError(t, c.Play(streamA))
	require.NoError(t, c.Play(streamA))

	assert.Equal(t, 1, eng.count(), "media handle must not be reconstructed")
	assert.Equal(t, 2, eng.last().plays)
	assert.True(t, c.IsPlaying())
}

func TestController_PlayNewURLReleasesOld(t *testing.T) {
	eng := &fakeEngine{}
	c := NewController(eng, nil)

	require.NoError(t, c.Play(streamA))
	first := eng.last()
	require.NoError(t, c.Play(streamB))

	assert.Equal(t, 2, eng.count())
	assert.Equal(t, 1, first.released)
	assert.Equal(t, streamB, c.CurrentURL())
	assert.Equal(t, DefaultVolume, eng.last().volume)
}

func TestController_EngineFailures(t *testing.T) {
	tests := []struct {
		name   string
		engine *fakeEngine
	}{
		{"create error", &fakeEngine{newErr: errFakeEngine}},
		{"create panic", &fakeEngine{newPanic: true}},
		{"play error", &fakeEngine{playErr: errFakeEngine}},
		{"play panic", &fakeEngine{panicOn: "play"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(tt.engine, nil)
			var err error
			assert.NotPanics(t, func() { err = c.Play(streamA) })
			assert.ErrorIs(t, err, ErrEngine)
			assert.False(t, c.IsPlaying())
			assert.Equal(t, StateError, c.State())
			// the attempted URL is still recorded
			assert.Equal(t, streamA, c.CurrentURL())
		})
	}
}

func TestController_VolumeErrorsAreSwallowed(t *testing.T) {
	eng := &fakeEngine{panicOn: "volume"}
	c := NewController(eng, nil)
	require.NoError(t, c.Play(streamA))

	var got int
	assert.NotPanics(t, func() { got = c.SetVolume(30) })
	assert.Equal(t, 30, got)
	assert.Equal(t, 30, c.Volume())
}

func TestController_SetVolumeClamps(t *testing.T) {
	eng := &fakeEngine{}
	c := NewController(eng, nil)
	assert.Equal(t, DefaultVolume, c.Volume())

	assert.Equal(t, 100, c.SetVolume(150))
	assert.Equal(t, 0, c.SetVolume(-5))

	// applied to the next handle
	c.SetVolume(42)
	require.NoError(t, c.Play(streamA))
	assert.Equal(t, 42, eng.last().volume)

	c.SetVolume(77)
	assert.Equal(t, 77, eng.last().volume)
}

func TestController_StopAndState(t *testing.T) {
	eng := &fakeEngine{}
	c := NewController(eng, nil)
	assert.Equal(t, StateIdle, c.State())

	c.Stop()
	assert.Equal(t, StateIdle, c.State(), "stop before any play stays idle")

	require.NoError(t, c.Play(streamA))
	assert.Equal(t, StateIdle, c.State(), "opening reads as idle")
	eng.last().setState(MediaPlaying)
	assert.Equal(t, StatePlaying, c.State())

	c.Stop()
	c.Stop()
	assert.Equal(t, StateStopped, c.State())
	assert.False(t, c.IsPlaying())
	assert.Equal(t, streamA, c.CurrentURL())
	assert.Equal(t, 2, eng.last().stops)
}

func TestController_TogglePlay(t *testing.T) {
	eng := &fakeEngine{}
	c := NewController(eng, nil)

	assert.ErrorIs(t, c.TogglePlay(), ErrEmptyURL)

	require.NoError(t, c.Play(streamA))
	require.NoError(t, c.TogglePlay())
	assert.False(t, c.IsPlaying())

	require.NoError(t, c.TogglePlay())
	assert.True(t, c.IsPlaying())
	assert.Equal(t, 1, eng.count())
}

func TestController_StreamDyingAfterPlay(t *testing.T) {
	for _, dead := range []MediaState{MediaError, MediaEnded} {
		t.Run(dead.String(), func(t *testing.T) {
			eng := &fakeEngine{}
			c := NewController(eng, nil)
			require.NoError(t, c.Play(streamA))
			assert.True(t, c.IsPlaying(), "connecting counts as playing")

			// the engine gives up after Play already returned
			eng.last().setState(dead)
			assert.False(t, c.IsPlaying())
			assert.NotEqual(t, StatePlaying, c.State())

			// toggling replays the dead stream instead of stopping it
			require.NoError(t, c.TogglePlay())
			assert.Equal(t, 0, eng.last().stops)
			assert.Equal(t, 2, eng.last().plays)
			assert.True(t, c.IsPlaying())
		})
	}
}

type ringNav struct{ stations []station.Station }

func (n ringNav) step(url string, d int) (station.Station, error) {
	i := -1
	for j, s := range n.stations {
		if s.StreamURL == url {
			i = j
		}
	}
	if i < 0 && d < 0 {
		i = 0
	}
	l := len(n.stations)
	return n.stations[((i+d)%l+l)%l], nil
}

func (n ringNav) Next(url string) (station.Station, error)     { return n.step(url, 1) }
func (n ringNav) Previous(url string) (station.Station, error) { return n.step(url, -1) }

func TestController_NextPrevious(t *testing.T) {
	eng := &fakeEngine{}
	c := NewController(eng, nil)

	_, err := c.NextStation()
	assert.ErrorIs(t, err, ErrNoNavigator)

	c.SetNavigator(ringNav{stations: []station.Station{
		{Name: "A", StreamURL: streamA},
		{Name: "B", StreamURL: streamB},
	}})

	st, err := c.NextStation()
	require.NoError(t, err)
	assert.Equal(t, "A", st.Name)
	assert.Equal(t, streamA, c.CurrentURL())

	st, err = c.NextStation()
	require.NoError(t, err)
	assert.Equal(t, "B", st.Name)

	st, err = c.PreviousStation()
	require.NoError(t, err)
	assert.Equal(t, "A", st.Name)
	assert.Equal(t, streamA, c.CurrentURL())
}

func TestController_ObserversSeeTransitions(t *testing.T) {
	eng := &fakeEngine{autoPlaying: true}
	c := NewController(eng, nil)

	var mu sync.Mutex
	var seen []Transition
	c.OnStateChange(func(tr Transition) {
		// observers may call back into the controller
		_ = c.State()
		mu.Lock()
		seen = append(seen, tr)
		mu.Unlock()
	})

	require.NoError(t, c.Play(streamA))
	c.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Equal(t, StateIdle, seen[0].From)
	assert.Equal(t, StatePlaying, seen[0].To)
	assert.Equal(t, StatePlaying, seen[1].From)
	assert.Equal(t, StateStopped, seen[1].To)
}

func TestController_WaitForPlaying(t *testing.T) {
	t.Run("started", func(t *testing.T) {
		eng := &fakeEngine{}
		c := NewController(eng, nil)
		require.NoError(t, c.Play(streamA))
		go func() {
			time.Sleep(20 * time.Millisecond)
			eng.last().setState(MediaPlaying)
		}()
		assert.Equal(t, Started, c.WaitForPlaying(context.Background(), 5*time.Millisecond, time.Second))
	})

	t.Run("failed", func(t *testing.T) {
		eng := &fakeEngine{}
		c := NewController(eng, nil)
		require.NoError(t, c.Play(streamA))
		eng.last().setState(MediaError)
		assert.Equal(t, Failed, c.WaitForPlaying(context.Background(), 5*time.Millisecond, time.Second))
	})

	t.Run("timed out", func(t *testing.T) {
		c := NewController(&fakeEngine{}, nil)
		require.NoError(t, c.Play(streamA))
		assert.Equal(t, TimedOut, c.WaitForPlaying(context.Background(), 5*time.Millisecond, 30*time.Millisecond))
	})

	t.Run("cancelled", func(t *testing.T) {
		c := NewController(&fakeEngine{}, nil)
		require.NoError(t, c.Play(streamA))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Equal(t, Cancelled, c.WaitForPlaying(ctx, 5*time.Millisecond, time.Second))
	})
}

func TestPercentToExponent(t *testing.T) {
	assert.Equal(t, MinVolumeDB, percentToExponent(0))
	assert.Equal(t, 0.0, percentToExponent(100))
	assert.Less(t, percentToExponent(25), percentToExponent(75))
}
