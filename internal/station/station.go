// Package station holds the records the rest of the player passes around:
// stations fetched from the directory and the favorites pinned by the user.
package station

import (
	"fmt"
	"strings"
)

// UnknownName is used for directory records that carry no usable name.
const UnknownName = "Unknown Station"

/* ─────────────  Station Data  ───────────── */

// Station is one internet audio stream as reported by the directory.
// Name is the display key and is not guaranteed to be unique.
type Station struct {
	Name        string
	StreamURL   string
	Country     string
	CountryCode string
	UUID        string
	Codec       string
	Bitrate     int
	Tags        []string
	Homepage    string
}

// HasStream reports whether the station carries a stream URL at all.
func (s Station) HasStream() bool { return strings.TrimSpace(s.StreamURL) != "" }

func (s Station) Title() string       { return s.Name }
func (s Station) FilterValue() string { return s.Name }

// Description is the second list line: codec, bitrate and tags when known.
func (s Station) Description() string {
	var parts []string
	if s.Codec != "" {
		parts = append(parts, s.Codec)
	}
	if s.Bitrate > 0 {
		parts = append(parts, fmt.Sprintf("%dkbps", s.Bitrate))
	}
	if len(s.Tags) > 0 {
		tags := s.Tags
		if len(tags) > 3 {
			tags = tags[:3]
		}
		parts = append(parts, strings.Join(tags, ", "))
	}
	if !s.HasStream() {
		parts = append(parts, "no stream")
	}
	return strings.Join(parts, " · ")
}

// Favorite returns the favorites entry that pins this station.
func (s Station) Favorite() FavoriteEntry {
	return FavoriteEntry{Name: s.Name, Country: s.Country}
}

/* ─────────────  Favorites  ───────────── */

// FavoriteEntry is a user-pinned station reference. It survives catalog
// reloads, so it stores the name and country rather than the station itself.
type FavoriteEntry struct {
	Name    string
	Country string
}

// Key identifies an entry; two entries with the same key are duplicates.
type Key struct {
	Name, Country string
}

func (f FavoriteEntry) Key() Key { return Key{Name: f.Name, Country: f.Country} }

func (f FavoriteEntry) Title() string       { return f.Name }
func (f FavoriteEntry) Description() string { return f.Country }
func (f FavoriteEntry) FilterValue() string { return f.Name }
