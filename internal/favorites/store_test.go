package favorites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babycommando/afroradio/internal/station"
)

func TestStore_AddRejectsDuplicates(t *testing.T) {
	s := New()
	a := station.FavoriteEntry{Name: "Radio A", Country: "Nigeria"}

	require.NoError(t, s.Add(a))
	assert.ErrorIs(t, s.Add(a), ErrAlreadyFavorite)
	assert.Equal(t, 1, s.Len())

	// same name, different country is a distinct entry
	require.NoError(t, s.Add(station.FavoriteEntry{Name: "Radio A", Country: "Ghana"}))
	assert.Equal(t, 2, s.Len())
}

func TestStore_RemoveIgnoresCountry(t *testing.T) {
	s := New(
		station.FavoriteEntry{Name: "Radio A", Country: "Nigeria"},
		station.FavoriteEntry{Name: "Radio B", Country: "Kenya"},
		station.FavoriteEntry{Name: "Radio A", Country: "Ghana"},
	)
	require.True(t, s.IsFavorite("Radio A"))

	assert.Equal(t, 2, s.Remove("Radio A"))
	assert.False(t, s.IsFavorite("Radio A"))
	assert.Equal(t, []station.FavoriteEntry{{Name: "Radio B", Country: "Kenya"}}, s.List())

	assert.Equal(t, 0, s.Remove("Radio A"))
}

func TestStore_GetReturnsFirstMatch(t *testing.T) {
	s := New(
		station.FavoriteEntry{Name: "Radio A", Country: "Nigeria"},
		station.FavoriteEntry{Name: "Radio A", Country: "Ghana"},
	)
	e, ok := s.Get("Radio A")
	require.True(t, ok)
	assert.Equal(t, "Nigeria", e.Country)

	_, ok = s.Get("Radio Z")
	assert.False(t, ok)
}

func TestStore_ListIsACopy(t *testing.T) {
	s := New(station.FavoriteEntry{Name: "Radio A", Country: "Nigeria"})
	l := s.List()
	l[0].Name = "mutated"
	assert.True(t, s.IsFavorite("Radio A"))
}

func TestStore_ReplaceAndClear(t *testing.T) {
	s := New()
	s.Replace([]station.FavoriteEntry{
		{Name: "X", Country: "Chad"},
		{Name: "X", Country: "Chad"},
		{Name: "Y", Country: "Chad"},
	})
	assert.Equal(t, 2, s.Len())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.List())
	assert.False(t, s.IsFavorite("X"))
}
