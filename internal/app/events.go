package app

import (
	"github.com/babycommando/afroradio/internal/fetch"
	"github.com/babycommando/afroradio/internal/player"
	"github.com/babycommando/afroradio/internal/station"
)

// Event is a notification for the presentation layer. Every value read from
// Events must be passed to Handle on the consuming goroutine.
type Event interface {
	event()
}

// FetchCompleted reports that the catalog now holds Stations for Country.
type FetchCompleted struct {
	fetch.Result
}

// PlaybackChanged follows every play and stop command.
type PlaybackChanged struct {
	player.Transition
	Station station.Station
}

type FavoritesChanged struct {
	Entries []station.FavoriteEntry
}

// Notice is a user-facing message that is not tied to a command's return.
type Notice struct {
	Message string
	Err     error
}

// dispatched carries a fetch completion to the consumer's goroutine.
type dispatched struct {
	fn func()
}

func (FetchCompleted) event()   {}
func (PlaybackChanged) event()  {}
func (FavoritesChanged) event() {}
func (Notice) event()           {}
func (dispatched) event()       {}
