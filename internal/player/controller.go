package player

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/babycommando/afroradio/internal/station"
)

const (
	DefaultVolume = 60
	MinVolume     = 0
	MaxVolume     = 100
)

var (
	ErrEmptyURL     = errors.New("stream URL is empty")
	ErrMalformedURL = errors.New("stream URL is malformed")
	ErrEngine       = errors.New("playback engine failure")
	ErrNoNavigator  = errors.New("no station list to navigate")
)

// Navigator resolves neighbours of the station currently playing.
type Navigator interface {
	Next(currentURL string) (station.Station, error)
	Previous(currentURL string) (station.Station, error)
}

// Transition is reported to observers on every commanded state change.
// Playing is the commanded state; To may still read Idle while the stream
// is connecting.
type Transition struct {
	From    State
	To      State
	URL     string
	Playing bool
	Err     error
}

// Controller is the single owner of the engine's media handle.
type Controller struct {
	engine Engine
	log    *zap.Logger

	mu         sync.Mutex
	media      Media
	currentURL string
	volume     int
	playing    bool
	failed     bool
	nav        Navigator
	observers  []func(Transition)
}

func NewController(engine Engine, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		engine: engine,
		volume: DefaultVolume,
		log:    logger.Named("player"),
	}
}

// SetNavigator wires the station list used by NextStation and PreviousStation.
func (c *Controller) SetNavigator(nav Navigator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nav = nav
}

// OnStateChange registers fn for every transition. fn runs on the goroutine
// that caused the change, without the controller lock held.
func (c *Controller) OnStateChange(fn func(Transition)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// ValidateURL accepts absolute http or https URLs with a host.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrEmptyURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrMalformedURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrMalformedURL)
	}
	return nil
}

// Play starts rawURL. Replaying the loaded URL resumes the existing handle.
// Invalid URLs are rejected before any state changes.
func (c *Controller) Play(rawURL string) error {
	if err := ValidateURL(rawURL); err != nil {
		c.log.Debug("play rejected", zap.String("url", rawURL), zap.Error(err))
		return err
	}

	c.mu.Lock()
	from := c.stateLocked()
	err := c.playLocked(rawURL)
	tr := Transition{From: from, To: c.stateLocked(), URL: rawURL, Playing: c.playing, Err: err}
	obs := c.observers
	c.mu.Unlock()

	c.notify(obs, tr)
	return err
}

// playLocked requires c.mu held.
func (c *Controller) playLocked(rawURL string) error {
	if c.media != nil && c.currentURL == rawURL {
		if err := guard(c.media.Play); err != nil {
			return c.failLocked("resume", err)
		}
		c.playing, c.failed = true, false
		c.log.Info("playback resumed", zap.String("url", rawURL))
		return nil
	}

	if c.media != nil {
		c.releaseLocked()
	}
	// recorded even if the engine fails below
	c.currentURL = rawURL

	var media Media
	err := guard(func() error {
		var err error
		media, err = c.engine.NewMedia(rawURL)
		return err
	})
	if err == nil && media == nil {
		err = fmt.Errorf("%w: engine returned no media", ErrEngine)
	}
	if err != nil {
		return c.failLocked("create media", err)
	}
	c.media = media

	vol := c.volume
	if err := guard(func() error { return media.SetVolume(vol) }); err != nil {
		c.log.Warn("failed to apply volume", zap.Int("volume", vol), zap.Error(err))
	}
	if err := guard(media.Play); err != nil {
		return c.failLocked("play", err)
	}
	c.playing, c.failed = true, false
	c.log.Info("playback started", zap.String("url", rawURL))
	return nil
}

func (c *Controller) failLocked(op string, err error) error {
	c.playing, c.failed = false, true
	c.log.Error("playback failed", zap.String("op", op), zap.String("url", c.currentURL), zap.Error(err))
	return err
}

func (c *Controller) releaseLocked() {
	media := c.media
	c.media = nil
	if err := guard(func() error { media.Release(); return nil }); err != nil {
		c.log.Warn("failed to release media", zap.Error(err))
	}
}

// Stop is safe to call in any state.
func (c *Controller) Stop() {
	c.mu.Lock()
	from := c.stateLocked()
	if c.media != nil {
		if err := guard(c.media.Stop); err != nil {
			c.log.Warn("engine stop failed", zap.Error(err))
		}
	}
	c.playing, c.failed = false, false
	tr := Transition{From: from, To: c.stateLocked(), URL: c.currentURL}
	obs := c.observers
	c.mu.Unlock()

	c.log.Debug("playback stopped", zap.String("url", tr.URL))
	c.notify(obs, tr)
}

// SetVolume clamps level to [0, 100] and returns the applied value. Engine
// failures are logged, never returned.
func (c *Controller) SetVolume(level int) int {
	level = max(MinVolume, min(MaxVolume, level))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = level
	if c.media != nil {
		media := c.media
		if err := guard(func() error { return media.SetVolume(level) }); err != nil {
			c.log.Warn("failed to set volume", zap.Int("volume", level), zap.Error(err))
		}
	}
	return level
}

func (c *Controller) Volume() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// State probes the engine. A handle that is still opening reads as Idle.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	switch {
	case c.failed:
		return StateError
	case c.media == nil:
		if c.currentURL == "" {
			return StateIdle
		}
		return StateStopped
	case !c.playing:
		return StateStopped
	}

	var ms MediaState
	media := c.media
	if err := guard(func() error { ms = media.State(); return nil }); err != nil {
		c.log.Warn("engine state probe failed", zap.Error(err))
		return StateError
	}
	return stateFromMedia(ms)
}

// IsPlaying reports whether playback was commanded and the engine still
// agrees: a stream that is connecting counts, one that errored or ended
// does not.
func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return false
	}
	switch c.stateLocked() {
	case StatePlaying, StateIdle:
		return true
	default:
		return false
	}
}

func (c *Controller) CurrentURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentURL
}

// TogglePlay stops when playing, otherwise replays the current URL. A stream
// that died on its own is replayed, not stopped.
func (c *Controller) TogglePlay() error {
	if c.IsPlaying() {
		c.Stop()
		return nil
	}
	return c.Play(c.CurrentURL())
}

func (c *Controller) NextStation() (station.Station, error) {
	return c.step((Navigator).Next)
}

func (c *Controller) PreviousStation() (station.Station, error) {
	return c.step((Navigator).Previous)
}

func (c *Controller) step(resolve func(Navigator, string) (station.Station, error)) (station.Station, error) {
	c.mu.Lock()
	nav, current := c.nav, c.currentURL
	c.mu.Unlock()
	if nav == nil {
		return station.Station{}, ErrNoNavigator
	}

	st, err := resolve(nav, current)
	if err != nil {
		return station.Station{}, err
	}
	return st, c.Play(st.StreamURL)
}

// Close releases the media handle.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.media != nil {
		c.releaseLocked()
	}
	c.playing = false
}

func (c *Controller) notify(obs []func(Transition), tr Transition) {
	for _, fn := range obs {
		fn(tr)
	}
}

// guard runs an engine call, turning errors and panics into ErrEngine.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrEngine, r)
		}
	}()
	if err := fn(); err != nil {
		if errors.Is(err, ErrEngine) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrEngine, err)
	}
	return nil
}
