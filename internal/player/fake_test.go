package player

import (
	"errors"
	"sync"
)

type fakeMedia struct {
	mu       sync.Mutex
	url      string
	state    MediaState
	volume   int
	plays    int
	stops    int
	released int
	playErr  error
	panicOn  string
	// autoPlaying makes Play land directly in MediaPlaying.
	autoPlaying bool
}

func (m *fakeMedia) maybePanic(op string) {
	if m.panicOn == op {
		panic("boom: " + op)
	}
}

func (m *fakeMedia) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maybePanic("play")
	m.plays++
	if m.playErr != nil {
		m.state = MediaError
		return m.playErr
	}
	if m.autoPlaying {
		m.state = MediaPlaying
	} else {
		m.state = MediaOpening
	}
	return nil
}

func (m *fakeMedia) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maybePanic("stop")
	m.stops++
	m.state = MediaStopped
	return nil
}

func (m *fakeMedia) SetVolume(level int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maybePanic("volume")
	m.volume = level
	return nil
}

func (m *fakeMedia) State() MediaState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *fakeMedia) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released++
}

func (m *fakeMedia) setState(s MediaState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

type fakeEngine struct {
	mu          sync.Mutex
	created     []*fakeMedia
	newErr      error
	newPanic    bool
	playErr     error
	panicOn     string
	autoPlaying bool
}

var errFakeEngine = errors.New("fake engine exploded")

func (e *fakeEngine) NewMedia(url string) (Media, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.newPanic {
		panic("engine panic")
	}
	if e.newErr != nil {
		return nil, e.newErr
	}
	m := &fakeMedia{url: url, playErr: e.playErr, panicOn: e.panicOn, autoPlaying: e.autoPlaying}
	e.created = append(e.created, m)
	return m, nil
}

func (e *fakeEngine) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.created)
}

func (e *fakeEngine) last() *fakeMedia {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.created) == 0 {
		return nil
	}
	return e.created[len(e.created)-1]
}
