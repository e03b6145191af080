package catalog

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babycommando/afroradio/internal/station"
)

func sampleStations() []station.Station {
	return []station.Station{
		{Name: "Cool FM", StreamURL: "https://a.example.com/cool", Country: "Nigeria"},
		{Name: "Wazobia FM", StreamURL: "https://a.example.com/wazobia", Country: "Nigeria"},
		{Name: "Nigeria Info", StreamURL: "https://a.example.com/info", Country: "Nigeria"},
		{Name: "cool jazz", StreamURL: "https://a.example.com/jazz", Country: "Nigeria"},
		{Name: "Cool FM", StreamURL: "https://a.example.com/cool2", Country: "Nigeria"},
	}
}

func names(stations []station.Station) []string {
	out := make([]string, len(stations))
	for i, s := range stations {
		out[i] = s.Name
	}
	return out
}

func TestCatalog_LoadResetsState(t *testing.T) {
	c := New()
	c.Load("Nigeria", sampleStations())
	c.SetSearchTerm("cool")
	_, err := c.Select("Wazobia FM")
	require.NoError(t, err)

	c.Load("Ghana", []station.Station{{Name: "Joy FM", StreamURL: "https://joy.example.com"}})

	assert.Equal(t, "Ghana", c.Country())
	assert.Equal(t, "", c.SearchTerm())
	_, ok := c.Selected()
	assert.False(t, ok)
	assert.Equal(t, []string{"Joy FM"}, names(c.Filtered()))
	assert.Equal(t, 1, c.Len())
}

func TestCatalog_LoadCopiesInput(t *testing.T) {
	in := sampleStations()
	c := New()
	c.Load("Nigeria", in)
	in[0].Name = "changed"
	assert.Equal(t, "Cool FM", c.All()[0].Name)
}

func TestCatalog_SetSearchTerm(t *testing.T) {
	c := New()
	c.Load("Nigeria", sampleStations())
	_, err := c.Select("Nigeria Info")
	require.NoError(t, err)

	got := c.SetSearchTerm("COOL")
	assert.Equal(t, []string{"Cool FM", "cool jazz", "Cool FM"}, names(got))
	assert.Equal(t, got, c.Filtered())

	// list and selection untouched
	assert.Len(t, c.All(), 5)
	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "Nigeria Info", sel.Name)

	assert.Empty(t, c.SetSearchTerm("zzz"))
	assert.Equal(t, c.All(), c.SetSearchTerm(""))
}

func TestFilter_IsOrderPreservingSubsequence(t *testing.T) {
	all := sampleStations()
	for _, term := range []string{"", "c", "FM", "o", "nigeria", "x", " ", "JAZZ"} {
		got := Filter(all, term)
		// exactly the matching elements, in original order
		var want []station.Station
		for _, s := range all {
			if strings.Contains(strings.ToLower(s.Name), strings.ToLower(term)) {
				want = append(want, s)
			}
		}
		if want == nil {
			want = []station.Station{}
		}
		assert.Equal(t, want, got, "term %q", term)
	}
	assert.Equal(t, all, Filter(all, ""))
}

func TestCatalog_Select(t *testing.T) {
	c := New()
	c.Load("Nigeria", sampleStations())

	st, err := c.Select("Cool FM")
	require.NoError(t, err)
	assert.Equal(t, "https://a.example.com/cool", st.StreamURL, "first match wins")

	_, err = c.Select("Missing FM")
	assert.ErrorIs(t, err, ErrNotFound)
	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "Cool FM", sel.Name, "failed select keeps the previous selection")

	_, found := c.Lookup("cool jazz")
	assert.True(t, found)

	byURL, found := c.ByURL("https://a.example.com/cool2")
	require.True(t, found)
	assert.Equal(t, "Cool FM", byURL.Name)
	_, found = c.ByURL("")
	assert.False(t, found)
}

func TestCatalog_RandomStation(t *testing.T) {
	c := NewWithRand(rand.New(rand.NewSource(1)))

	_, err := c.RandomStation()
	assert.ErrorIs(t, err, ErrNoStations)

	c.Load("Chad", []station.Station{{Name: "A"}, {Name: "B", StreamURL: " "}})
	_, err = c.RandomStation()
	assert.ErrorIs(t, err, ErrNoValidStreams)

	c.Load("Chad", []station.Station{
		{Name: "A"},
		{Name: "Only", StreamURL: "https://only.example.com"},
		{Name: "C"},
	})
	for i := 0; i < 50; i++ {
		st, err := c.RandomStation()
		require.NoError(t, err)
		assert.Equal(t, "Only", st.Name)
	}
}

func TestCatalog_RandomStation_CoversCandidates(t *testing.T) {
	c := NewWithRand(rand.New(rand.NewSource(42)))
	c.Load("Nigeria", sampleStations())

	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		st, err := c.RandomStation()
		require.NoError(t, err)
		seen[st.StreamURL] = true
	}
	assert.Len(t, seen, 5)
}

func TestCatalog_NextPrevious(t *testing.T) {
	c := New()
	_, err := c.Next("anything")
	assert.ErrorIs(t, err, ErrNoStations)
	_, err = c.Previous("anything")
	assert.ErrorIs(t, err, ErrNoStations)

	all := sampleStations()
	c.Load("Nigeria", all)

	next, err := c.Next(all[1].StreamURL)
	require.NoError(t, err)
	assert.Equal(t, all[2], next)

	prev, err := c.Previous(all[1].StreamURL)
	require.NoError(t, err)
	assert.Equal(t, all[0], prev)

	// wrap around
	next, _ = c.Next(all[4].StreamURL)
	assert.Equal(t, all[0], next)
	prev, _ = c.Previous(all[0].StreamURL)
	assert.Equal(t, all[4], prev)

	// unknown URL
	next, _ = c.Next("https://unknown.example.com")
	assert.Equal(t, all[0], next)
	prev, _ = c.Previous("https://unknown.example.com")
	assert.Equal(t, all[4], prev)
	next, _ = c.Next("")
	assert.Equal(t, all[0], next)
}

func TestCatalog_NextPreviousRoundTrip(t *testing.T) {
	c := New()
	all := sampleStations()
	c.Load("Nigeria", all)

	for _, s := range all {
		prev, err := c.Previous(s.StreamURL)
		require.NoError(t, err)
		back, err := c.Next(prev.StreamURL)
		require.NoError(t, err)
		assert.Equal(t, s, back)
	}
}

func TestCatalog_NextPreviousSingleton(t *testing.T) {
	c := New()
	only := station.Station{Name: "Solo", StreamURL: "https://solo.example.com"}
	c.Load("Togo", []station.Station{only})

	next, err := c.Next(only.StreamURL)
	require.NoError(t, err)
	prev, err := c.Previous(only.StreamURL)
	require.NoError(t, err)
	assert.Equal(t, only, next)
	assert.Equal(t, only, prev)
}
