package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"go.uber.org/zap"
)

const (
	DialAttempts        = 5
	DialRetryDelay      = 250 * time.Millisecond
	SpeakerBuffer       = time.Second / 10
	ResampleQuality     = 4
	VolumeCurveExponent = 0.5
	MinVolumeDB         = -10.0
)

var errReleased = errors.New("media released")

/* ─────────────  global audio state  ───────────── */

var (
	speakerOnce     sync.Once
	speakerErr      error
	mixerSampleRate beep.SampleRate
)

// initSpeaker fixes the mixer rate to the first stream's rate; later streams
// are resampled to it.
func initSpeaker(rate beep.SampleRate) error {
	speakerOnce.Do(func() {
		mixerSampleRate = rate
		speakerErr = speaker.Init(rate, rate.N(SpeakerBuffer))
	})
	return speakerErr
}

/* ─────────────  Engine  ───────────── */

// BeepEngine plays MP3 internet streams through the system speaker.
type BeepEngine struct {
	client    *http.Client
	userAgent string
	log       *zap.Logger
}

var _ Engine = (*BeepEngine)(nil)

func NewBeepEngine(client *http.Client, userAgent string, logger *zap.Logger) *BeepEngine {
	if client == nil {
		client = &http.Client{Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: 10 * time.Second,
		}}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BeepEngine{client: client, userAgent: userAgent, log: logger.Named("beep")}
}

// NewMedia never dials; the connection is made by Play.
func (e *BeepEngine) NewMedia(url string) (Media, error) {
	return &beepMedia{
		engine: e,
		url:    url,
		volume: DefaultVolume,
		log:    e.log.With(zap.String("url", url)),
	}, nil
}

type opened struct {
	decoded beep.StreamSeekCloser
	format  beep.Format
	body    io.ReadCloser
}

func (e *BeepEngine) dialAndDecode(ctx context.Context, url string) (opened, error) {
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(DialRetryDelay), DialAttempts-1), ctx)

	return backoff.RetryWithData(func() (opened, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return opened{}, backoff.Permanent(err)
		}
		if e.userAgent != "" {
			req.Header.Set("User-Agent", e.userAgent)
		}
		resp, err := e.client.Do(req)
		if err != nil {
			return opened{}, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			err := fmt.Errorf("unexpected status %s", resp.Status)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return opened{}, backoff.Permanent(err)
			}
			return opened{}, err
		}
		decoded, format, err := mp3.Decode(resp.Body)
		if err != nil {
			resp.Body.Close()
			return opened{}, fmt.Errorf("decode: %w", err)
		}
		return opened{decoded: decoded, format: format, body: resp.Body}, nil
	}, b)
}

/* ─────────────  Media  ───────────── */

type beepMedia struct {
	engine *BeepEngine
	url    string
	log    *zap.Logger

	mu       sync.Mutex
	state    MediaState
	volume   int
	gen      uint64 // bumped on every teardown; stale opens compare against it
	cancel   context.CancelFunc
	stream   beep.StreamSeekCloser
	body     io.ReadCloser
	vol      *effects.Volume
	ctrl     *beep.Ctrl
	released bool
}

func (m *beepMedia) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return errReleased
	}
	switch m.state {
	case MediaOpening, MediaPlaying:
		return nil
	}

	// a live stream cannot be resumed after Stop, so dial again
	m.teardownLocked()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.state = MediaOpening
	go m.open(ctx, m.gen)
	return nil
}

func (m *beepMedia) open(ctx context.Context, gen uint64) {
	o, err := m.engine.dialAndDecode(ctx, m.url)
	if err == nil {
		if err = initSpeaker(o.format.SampleRate); err != nil {
			o.decoded.Close()
			o.body.Close()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		if err == nil {
			o.decoded.Close()
			o.body.Close()
		}
		return
	}
	if err != nil {
		m.state = MediaError
		if ctx.Err() == nil {
			m.log.Warn("stream failed to open", zap.Error(err))
		}
		return
	}

	var s beep.Streamer = o.decoded
	if o.format.SampleRate != mixerSampleRate {
		s = beep.Resample(ResampleQuality, o.format.SampleRate, mixerSampleRate, s)
	}
	// the callback runs under the speaker lock, so hop off it before taking m.mu
	s = beep.Seq(s, beep.Callback(func() { go m.ended(gen) }))

	m.vol = &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   percentToExponent(float64(m.volume)),
		Silent:   m.volume == 0,
	}
	m.ctrl = &beep.Ctrl{Streamer: m.vol}
	m.stream = o.decoded
	m.body = o.body
	speaker.Play(m.ctrl)
	m.state = MediaPlaying
	m.log.Debug("stream playing", zap.Int("sample_rate", int(o.format.SampleRate)))
}

func (m *beepMedia) ended(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return
	}
	if m.stream != nil && m.stream.Err() != nil {
		m.log.Warn("stream broke", zap.Error(m.stream.Err()))
		m.state = MediaError
	} else {
		m.state = MediaEnded
	}
	m.teardownLocked()
}

// teardownLocked requires m.mu held.
func (m *beepMedia) teardownLocked() {
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.ctrl != nil {
		speaker.Lock()
		m.ctrl.Streamer = nil
		speaker.Unlock()
		m.ctrl = nil
		m.vol = nil
	}
	if m.stream != nil {
		m.stream.Close()
		m.stream = nil
	}
	if m.body != nil {
		m.body.Close()
		m.body = nil
	}
}

func (m *beepMedia) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return errReleased
	}
	m.teardownLocked()
	m.state = MediaStopped
	return nil
}

func (m *beepMedia) SetVolume(level int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return errReleased
	}
	m.volume = level
	if m.vol != nil {
		speaker.Lock()
		m.vol.Volume = percentToExponent(float64(level))
		m.vol.Silent = level == 0
		speaker.Unlock()
	}
	return nil
}

func (m *beepMedia) State() MediaState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *beepMedia) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return
	}
	m.teardownLocked()
	m.released = true
	m.state = MediaStopped
}

// percentToExponent maps 0-100 onto a perceptual curve for effects.Volume
// with base 2.
func percentToExponent(p float64) float64 {
	if p <= 0 {
		return MinVolumeDB
	}
	if p >= 100 {
		return 0
	}
	normalized := p / 100.0
	adjusted := math.Pow(normalized, VolumeCurveExponent)
	return (1.0 - adjusted) * MinVolumeDB
}
