// Package catalog keeps the working set of stations for the selected country,
// the search filter applied to it, and the current selection.
package catalog

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/babycommando/afroradio/internal/station"
)

var (
	ErrNoStations     = errors.New("no stations available")
	ErrNoValidStreams = errors.New("no station has a stream URL")
	ErrNotFound       = errors.New("station not found")
)

// Catalog is safe for concurrent use.
type Catalog struct {
	mu         sync.RWMutex
	country    string
	all        []station.Station
	searchTerm string
	filtered   []station.Station
	selected   int // index into all, -1 when nothing is selected

	rngMu sync.Mutex
	rng   *rand.Rand
}

func New() *Catalog {
	return NewWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand uses rng for RandomStation.
func NewWithRand(rng *rand.Rand) *Catalog {
	return &Catalog{selected: -1, rng: rng}
}

// Load replaces the station list wholesale and resets search and selection.
func (c *Catalog) Load(country string, stations []station.Station) {
	all := make([]station.Station, len(stations))
	copy(all, stations)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.country = country
	c.all = all
	c.searchTerm = ""
	c.selected = -1
	c.refilter()
}

// SetSearchTerm recomputes the filtered view; the list and selection are untouched.
func (c *Catalog) SetSearchTerm(term string) []station.Station {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchTerm = term
	c.refilter()
	return cloneStations(c.filtered)
}

// refilter requires c.mu held for writing.
func (c *Catalog) refilter() {
	c.filtered = Filter(c.all, c.searchTerm)
}

// Filter returns, in order, the stations whose name contains term
// case-insensitively. An empty term matches everything.
func Filter(stations []station.Station, term string) []station.Station {
	if term == "" {
		return cloneStations(stations)
	}
	needle := strings.ToLower(term)
	out := make([]station.Station, 0, len(stations))
	for _, s := range stations {
		if strings.Contains(strings.ToLower(s.Name), needle) {
			out = append(out, s)
		}
	}
	return out
}

// Select makes the first station named name the current selection.
func (c *Catalog) Select(name string) (station.Station, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOfName(name)
	if i < 0 {
		return station.Station{}, ErrNotFound
	}
	c.selected = i
	return c.all[i], nil
}

// Lookup finds the first station named name without changing the selection.
func (c *Catalog) Lookup(name string) (station.Station, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.indexOfName(name)
	if i < 0 {
		return station.Station{}, false
	}
	return c.all[i], true
}

// ByURL finds the first station streaming url.
func (c *Catalog) ByURL(url string) (station.Station, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.indexOfURL(url)
	if i < 0 {
		return station.Station{}, false
	}
	return c.all[i], true
}

func (c *Catalog) indexOfName(name string) int {
	for i, s := range c.all {
		if s.Name == name {
			return i
		}
	}
	return -1
}

func (c *Catalog) indexOfURL(url string) int {
	if url == "" {
		return -1
	}
	for i, s := range c.all {
		if s.StreamURL == url {
			return i
		}
	}
	return -1
}

// RandomStation picks uniformly among the stations that have a stream URL.
func (c *Catalog) RandomStation() (station.Station, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.all) == 0 {
		return station.Station{}, ErrNoStations
	}
	candidates := make([]int, 0, len(c.all))
	for i, s := range c.all {
		if s.HasStream() {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return station.Station{}, ErrNoValidStreams
	}

	c.rngMu.Lock()
	pick := candidates[c.rng.Intn(len(candidates))]
	c.rngMu.Unlock()
	return c.all[pick], nil
}

// Next returns the station after the one streaming currentURL, wrapping
// around. An unknown URL counts as index -1, so Next yields the first station.
func (c *Catalog) Next(currentURL string) (station.Station, error) {
	return c.step(currentURL, 1)
}

// Previous is Next in the other direction; an unknown URL yields the last station.
func (c *Catalog) Previous(currentURL string) (station.Station, error) {
	return c.step(currentURL, -1)
}

func (c *Catalog) step(currentURL string, delta int) (station.Station, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := len(c.all)
	if n == 0 {
		return station.Station{}, ErrNoStations
	}
	i := c.indexOfURL(currentURL)
	if i < 0 && delta < 0 {
		// unknown URL: Previous must land on the last station, not n-2
		i = 0
	}
	next := ((i+delta)%n + n) % n
	return c.all[next], nil
}

func (c *Catalog) Country() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.country
}

func (c *Catalog) SearchTerm() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.searchTerm
}

func (c *Catalog) All() []station.Station {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneStations(c.all)
}

func (c *Catalog) Filtered() []station.Station {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneStations(c.filtered)
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.all)
}

// Selected returns the current selection, if any.
func (c *Catalog) Selected() (station.Station, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selected < 0 {
		return station.Station{}, false
	}
	return c.all[c.selected], true
}

func cloneStations(s []station.Station) []station.Station {
	out := make([]station.Station, len(s))
	copy(out, s)
	return out
}
