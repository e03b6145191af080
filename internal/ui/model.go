// Package ui is the terminal front end: a bubbletea program over app.App.
package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/babycommando/afroradio/internal/app"
	"github.com/babycommando/afroradio/internal/catalog"
	"github.com/babycommando/afroradio/internal/player"
	"github.com/babycommando/afroradio/internal/station"
)

const (
	volumeStep   = 5
	startTimeout = 15 * time.Second
	chromeHeight = 7 // header, country line, search, status, help
)

type viewMode int

const (
	stationsView viewMode = iota
	favoritesView
)

/* ─────────────  Bubble Tea messages  ───────────── */

type (
	eventMsg struct{ ev app.Event }
	startMsg struct {
		url    string
		result player.StartResult
	}
)

/* ─────────────  Bubble Tea model  ───────────── */

type model struct {
	app  *app.App
	keys keyMap

	l         list.Model
	search    textinput.Model
	searching bool
	mode      viewMode

	countries  []string
	countryIdx int
	loading    bool

	nowPlaying station.Station
	playing    bool
	status     string

	ctx    context.Context
	cancel context.CancelFunc
}

// New returns the root model; country is loaded on Init.
func New(a *app.App, country string) tea.Model {
	return newModel(a, country)
}

func newModel(a *app.App, country string) model {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 60, 20)
	l.Title = "Stations"
	l.Styles.Title = l.Styles.Title.
		UnsetBackground().
		Foreground(accent).
		Padding(0, 0)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false) // search goes through the catalog
	l.SetShowHelp(false)

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search stations"
	ti.CharLimit = 64

	countries, idx := countryIndex(Countries, country)
	ctx, cancel := context.WithCancel(context.Background())

	return model{
		app:        a,
		keys:       defaultKeys(),
		l:          l,
		search:     ti,
		countries:  countries,
		countryIdx: idx,
		loading:    true,
		status:     "Loading " + countries[idx] + "…",
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (m model) country() string {
	return m.countries[m.countryIdx]
}

func (m model) Init() tea.Cmd {
	m.app.LoadCountry(m.country())
	return waitForEvent(m.app.Events())
}

func waitForEvent(ch <-chan app.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg{ev: ev}
	}
}

func (m model) waitForStart(url string) tea.Cmd {
	ctrl, ctx := m.app.Controller(), m.ctx
	return func() tea.Msg {
		return startMsg{url: url, result: ctrl.WaitForPlaying(ctx, player.DefaultPollInterval, startTimeout)}
	}
}

/* ─────────────  Update  ───────────── */

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.l.SetSize(msg.Width, max(msg.Height-chromeHeight, 3))
		return m, nil

	case eventMsg:
		var cmds []tea.Cmd
		for _, ev := range m.app.Handle(msg.ev) {
			cmds = append(cmds, m.apply(ev))
		}
		cmds = append(cmds, waitForEvent(m.app.Events()))
		return m, tea.Batch(cmds...)

	case startMsg:
		if msg.url != m.app.Controller().CurrentURL() {
			return m, nil
		}
		switch msg.result {
		case player.Started:
			m.status = "Now playing: " + m.nowPlaying.Name
		case player.Failed, player.TimedOut:
			m.status = "Failed to start: " + m.nowPlaying.Name
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.l, cmd = m.l.Update(msg)
	return m, cmd
}

// apply folds one app notification into the model.
func (m *model) apply(ev app.Event) tea.Cmd {
	switch ev := ev.(type) {
	case app.FetchCompleted:
		m.loading = false
		m.search.SetValue("")
		if m.mode == stationsView {
			m.refreshStations()
		}
		m.status = fmt.Sprintf("%d stations in %s", len(ev.Stations), ev.Country)

	case app.PlaybackChanged:
		switch {
		case ev.Err != nil:
			m.playing = false
			m.status = "Failed to start: " + ev.Station.Name
		case ev.Playing:
			m.playing = true
			m.nowPlaying = ev.Station
			m.status = "Connecting… " + ev.Station.Name
			return m.waitForStart(ev.URL)
		default:
			m.playing = false
			m.status = "Stopped"
		}

	case app.FavoritesChanged:
		if m.mode == favoritesView {
			m.refreshFavorites()
		}

	case app.Notice:
		m.status = ev.Message
	}
	return nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var err error
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		m.app.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Play):
		err = m.playHighlighted()

	case key.Matches(msg, m.keys.Stop):
		m.app.Stop()

	case key.Matches(msg, m.keys.Toggle):
		err = m.app.TogglePlay()

	case key.Matches(msg, m.keys.Next):
		_, err = m.app.NextStation()

	case key.Matches(msg, m.keys.Previous):
		_, err = m.app.PreviousStation()

	case key.Matches(msg, m.keys.Random):
		_, err = m.app.PlayRandom()

	case key.Matches(msg, m.keys.Favorite):
		m.toggleFavorite()

	case key.Matches(msg, m.keys.Favorites):
		if m.mode == stationsView {
			m.mode = favoritesView
			m.refreshFavorites()
		} else {
			m.mode = stationsView
			m.refreshStations()
		}

	case key.Matches(msg, m.keys.Search):
		if m.mode == stationsView {
			m.searching = true
			cmd := m.search.Focus()
			return m, cmd
		}

	case key.Matches(msg, m.keys.Reload):
		m.app.ReloadCountry(m.country())
		m.loading = true
		m.status = "Reloading " + m.country() + "…"

	case key.Matches(msg, m.keys.PrevCountry):
		return m.changeCountry(-1)

	case key.Matches(msg, m.keys.NextCountry):
		return m.changeCountry(1)

	case key.Matches(msg, m.keys.VolumeUp):
		v := m.app.SetVolume(m.app.Controller().Volume() + volumeStep)
		m.status = fmt.Sprintf("Volume %d%%", v)

	case key.Matches(msg, m.keys.VolumeDown):
		v := m.app.SetVolume(m.app.Controller().Volume() - volumeStep)
		m.status = fmt.Sprintf("Volume %d%%", v)

	default:
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}

	if err != nil {
		m.status = errorText(err, m.country())
	}
	return m, nil
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.SetValue("")
		m.app.Search("")
		m.refreshStations()
		fallthrough
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.app.Catalog().SearchTerm() {
		m.app.Search(m.search.Value())
		m.refreshStations()
	}
	return m, cmd
}

func (m model) changeCountry(delta int) (tea.Model, tea.Cmd) {
	n := len(m.countries)
	m.countryIdx = ((m.countryIdx+delta)%n + n) % n
	m.app.LoadCountry(m.country())
	m.loading = true
	m.status = "Loading " + m.country() + "…"
	return m, nil
}

func (m *model) playHighlighted() error {
	switch it := m.l.SelectedItem().(type) {
	case station.Station:
		if _, err := m.app.Select(it.Name); err != nil {
			return err
		}
		_, err := m.app.PlaySelected()
		return err
	case station.FavoriteEntry:
		_, err := m.app.PlayFavorite(it.Name)
		return err
	}
	return app.ErrNoSelection
}

func (m *model) toggleFavorite() {
	switch it := m.l.SelectedItem().(type) {
	case station.Station:
		added, err := m.app.ToggleFavorite(it)
		switch {
		case err != nil:
			m.status = "Could not add " + it.Name
		case added:
			m.status = "♥ Added " + it.Name
		default:
			m.status = "Removed " + it.Name
		}
	case station.FavoriteEntry:
		m.app.RemoveFavorite(it.Name)
		m.status = "Removed " + it.Name
	}
}

func (m *model) refreshStations() {
	stations := m.app.Catalog().Filtered()
	items := make([]list.Item, len(stations))
	for i := range stations {
		items[i] = stations[i]
	}
	m.l.Title = "Stations · " + m.country()
	m.l.SetItems(items)
}

func (m *model) refreshFavorites() {
	favs := m.app.Favorites()
	items := make([]list.Item, len(favs))
	for i := range favs {
		items[i] = favs[i]
	}
	m.l.Title = "♥ Favorites"
	m.l.SetItems(items)
}

// errorText turns command errors into status-line messages.
func errorText(err error, country string) string {
	switch {
	case errors.Is(err, catalog.ErrNoStations):
		return "No stations available"
	case errors.Is(err, catalog.ErrNoValidStreams):
		return "No station in " + country + " has a stream URL"
	case errors.Is(err, app.ErrNoSelection):
		return "Select a station first"
	case errors.Is(err, app.ErrNoStreamURL):
		return "This station has no stream URL"
	case errors.Is(err, app.ErrStationNotFound):
		return "Station not found in " + country
	case errors.Is(err, player.ErrEmptyURL), errors.Is(err, player.ErrMalformedURL):
		return "Invalid stream URL"
	case errors.Is(err, player.ErrEngine):
		return "Playback error"
	default:
		return err.Error()
	}
}
