// Package app coordinates the station catalog, favorites, directory fetches
// and the playback controller behind one surface for the presentation layer.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/babycommando/afroradio/internal/catalog"
	"github.com/babycommando/afroradio/internal/directory"
	"github.com/babycommando/afroradio/internal/favorites"
	"github.com/babycommando/afroradio/internal/fetch"
	"github.com/babycommando/afroradio/internal/player"
	"github.com/babycommando/afroradio/internal/station"
)

const (
	DefaultEventBuffer = 256
	persistTimeout     = 5 * time.Second
)

var (
	ErrNoSelection     = errors.New("no station selected")
	ErrNoStreamURL     = errors.New("station has no stream URL")
	ErrStationNotFound = errors.New("station not found in the current list")
	ErrNotFavorite     = errors.New("station is not a favorite")
)

// FavoritesRepository persists favorites between runs.
type FavoritesRepository interface {
	LoadFavorites(ctx context.Context) ([]station.FavoriteEntry, error)
	SaveFavorites(ctx context.Context, entries []station.FavoriteEntry) error
}

// PresenceSink mirrors what is playing somewhere outside the terminal.
type PresenceSink interface {
	NowPlaying(st station.Station)
	Clear()
}

type Options struct {
	Directory   directory.Directory
	Engine      player.Engine
	Repository  FavoritesRepository // optional
	Presence    PresenceSink        // optional
	Catalog     *catalog.Catalog    // optional, for a seeded catalog
	EventBuffer int
	Logger      *zap.Logger
}

type App struct {
	catalog   *catalog.Catalog
	favorites *favorites.Store
	ctrl      *player.Controller
	task      *fetch.Task
	dir       directory.Directory
	repo      FavoritesRepository
	presence  PresenceSink
	log       *zap.Logger

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once

	// inbox collects events produced while Handle runs a dispatched
	// completion. Only the consuming goroutine touches it.
	inbox []Event
}

func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	buf := opts.EventBuffer
	if buf <= 0 {
		buf = DefaultEventBuffer
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.New()
	}

	a := &App{
		catalog:   cat,
		favorites: favorites.New(),
		ctrl:      player.NewController(opts.Engine, logger),
		dir:       opts.Directory,
		repo:      opts.Repository,
		presence:  opts.Presence,
		log:       logger.Named("app"),
		events:    make(chan Event, buf),
		done:      make(chan struct{}),
	}
	a.task = fetch.New(opts.Directory, a.dispatch, a.onFetched, logger)
	a.ctrl.SetNavigator(a.catalog)
	a.ctrl.OnStateChange(a.onTransition)
	return a
}

/* ─────────────  Events  ───────────── */

func (a *App) Events() <-chan Event {
	return a.events
}

// Handle processes one value read from Events on the consuming goroutine and
// returns the notifications to present. Fetch completions touch the catalog
// here, never on the fetching goroutine.
func (a *App) Handle(ev Event) []Event {
	d, ok := ev.(dispatched)
	if !ok {
		return []Event{ev}
	}
	a.inbox = nil
	d.fn()
	out := a.inbox
	a.inbox = nil
	return out
}

func (a *App) dispatch(fn func()) {
	select {
	case a.events <- dispatched{fn: fn}:
	case <-a.done:
	}
}

// emit never blocks; the consumer may be the caller.
func (a *App) emit(ev Event) {
	select {
	case a.events <- ev:
	default:
		a.log.Warn("event buffer full, dropping event", zap.String("event", fmt.Sprintf("%T", ev)))
	}
}

func (a *App) onFetched(res fetch.Result) {
	a.catalog.Load(res.Country, res.Stations)
	a.inbox = append(a.inbox, FetchCompleted{Result: res})
	if len(res.Stations) == 0 {
		a.inbox = append(a.inbox, Notice{Message: fmt.Sprintf("No stations found for %s", res.Country)})
	}
}

func (a *App) onTransition(tr player.Transition) {
	st, ok := a.catalog.ByURL(tr.URL)
	if !ok {
		st = station.Station{Name: tr.URL, StreamURL: tr.URL}
	}
	if a.presence != nil {
		if tr.Playing {
			a.presence.NowPlaying(st)
		} else {
			a.presence.Clear()
		}
	}
	a.emit(PlaybackChanged{Transition: tr, Station: st})
}

/* ─────────────  Catalog  ───────────── */

// LoadCountry starts fetching country, superseding any load in flight.
func (a *App) LoadCountry(country string) fetch.Request {
	return a.task.Start(country)
}

// ReloadCountry is LoadCountry past any cached list for country.
func (a *App) ReloadCountry(country string) fetch.Request {
	if inv, ok := a.dir.(interface{ Invalidate(country string) }); ok {
		inv.Invalidate(country)
	}
	return a.task.Start(country)
}

func (a *App) CancelLoad() {
	a.task.Cancel()
}

func (a *App) Loading() bool {
	return a.task.Pending()
}

func (a *App) Search(term string) []station.Station {
	return a.catalog.SetSearchTerm(term)
}

func (a *App) Select(name string) (station.Station, error) {
	st, err := a.catalog.Select(name)
	if errors.Is(err, catalog.ErrNotFound) {
		return st, fmt.Errorf("%w: %q", ErrStationNotFound, name)
	}
	return st, err
}

/* ─────────────  Playback  ───────────── */

func (a *App) PlaySelected() (station.Station, error) {
	st, ok := a.catalog.Selected()
	if !ok {
		return station.Station{}, ErrNoSelection
	}
	return st, a.playStation(st)
}

// PlayStation selects and plays the first station named name.
func (a *App) PlayStation(name string) (station.Station, error) {
	st, err := a.Select(name)
	if err != nil {
		return station.Station{}, err
	}
	return st, a.playStation(st)
}

// PlayRandom plays a random station that has a stream. The error tells an
// empty catalog (catalog.ErrNoStations) apart from one without any streams
// (catalog.ErrNoValidStreams).
func (a *App) PlayRandom() (station.Station, error) {
	st, err := a.catalog.RandomStation()
	if err != nil {
		return station.Station{}, err
	}
	return st, a.playStation(st)
}

func (a *App) playStation(st station.Station) error {
	if !st.HasStream() {
		return fmt.Errorf("%w: %s", ErrNoStreamURL, st.Name)
	}
	return a.ctrl.Play(st.StreamURL)
}

func (a *App) Play(url string) error {
	return a.ctrl.Play(url)
}

func (a *App) Stop() {
	a.ctrl.Stop()
}

func (a *App) TogglePlay() error {
	return a.ctrl.TogglePlay()
}

func (a *App) SetVolume(level int) int {
	return a.ctrl.SetVolume(level)
}

func (a *App) NextStation() (station.Station, error) {
	return a.ctrl.NextStation()
}

func (a *App) PreviousStation() (station.Station, error) {
	return a.ctrl.PreviousStation()
}

/* ─────────────  Favorites  ───────────── */

// RestoreFavorites loads persisted favorites, replacing the in-memory set.
func (a *App) RestoreFavorites(ctx context.Context) error {
	if a.repo == nil {
		return nil
	}
	entries, err := a.repo.LoadFavorites(ctx)
	if err != nil {
		return fmt.Errorf("failed to load favorites: %w", err)
	}
	a.favorites.Replace(entries)
	a.log.Debug("favorites restored", zap.Int("count", a.favorites.Len()))
	return nil
}

// ToggleFavorite removes st by name if it is a favorite, otherwise adds it.
// It reports whether st is a favorite afterwards.
func (a *App) ToggleFavorite(st station.Station) (bool, error) {
	if a.favorites.IsFavorite(st.Name) {
		a.RemoveFavorite(st.Name)
		return false, nil
	}
	err := a.AddFavorite(st.Favorite())
	switch {
	case errors.Is(err, favorites.ErrAlreadyFavorite):
		// added concurrently; the outcome is the same
		return true, nil
	case err != nil:
		a.log.Warn("failed to add favorite", zap.String("station", st.Name), zap.Error(err))
		return false, err
	}
	return true, nil
}

func (a *App) AddFavorite(entry station.FavoriteEntry) error {
	if err := a.favorites.Add(entry); err != nil {
		return err
	}
	a.favoritesChanged()
	return nil
}

// RemoveFavorite removes every favorite named name and returns the count.
func (a *App) RemoveFavorite(name string) int {
	n := a.favorites.Remove(name)
	if n > 0 {
		a.favoritesChanged()
	}
	return n
}

func (a *App) ClearFavorites() {
	a.favorites.Clear()
	a.favoritesChanged()
}

func (a *App) IsFavorite(name string) bool {
	return a.favorites.IsFavorite(name)
}

func (a *App) Favorites() []station.FavoriteEntry {
	return a.favorites.List()
}

// PlayFavorite plays the current catalog's station for the favorite name.
// A favorite from another country is reported as ErrStationNotFound.
func (a *App) PlayFavorite(name string) (station.Station, error) {
	entry, ok := a.favorites.Get(name)
	if !ok {
		return station.Station{}, fmt.Errorf("%w: %q", ErrNotFavorite, name)
	}
	st, ok := a.catalog.Lookup(entry.Name)
	if !ok {
		return station.Station{}, fmt.Errorf("%w: %q (%s)", ErrStationNotFound, entry.Name, entry.Country)
	}
	return st, a.playStation(st)
}

func (a *App) favoritesChanged() {
	entries := a.favorites.List()
	if a.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := a.repo.SaveFavorites(ctx, entries); err != nil {
			a.log.Error("failed to save favorites", zap.Error(err))
			a.emit(Notice{Message: "Could not save favorites", Err: err})
		}
	}
	a.emit(FavoritesChanged{Entries: entries})
}

/* ─────────────  Accessors  ───────────── */

func (a *App) Catalog() *catalog.Catalog {
	return a.catalog
}

func (a *App) Controller() *player.Controller {
	return a.ctrl
}

// Close cancels any load, releases the media handle and stops event delivery.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.task.Cancel()
		a.ctrl.Close()
		if a.presence != nil {
			a.presence.Clear()
		}
		close(a.done)
	})
}
