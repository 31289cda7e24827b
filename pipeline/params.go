// Package pipeline builds the lazy query plans that find danceable songs
// whose lyrics mention a keyword.
//
// LyricsFilter and Danceability are independent plans; Assemble joins them
// and sorts the result. Nothing is read until the assembled frame is
// collected.
package pipeline

import (
	"fmt"

	"github.com/vegasq/danceable/query"
)

// Range is an inclusive numeric interval
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether v lies in the interval
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}

// predicate is the plan form of Contains
func (r Range) predicate(column string) query.Expression {
	return query.Between(query.Col(column), r.Min, r.Max)
}

// Params are the tunable thresholds of the pipelines
type Params struct {
	// MinViews is a strict lower bound on lyrics page views
	MinViews int64
	// Language keeps only lyrics in this language
	Language string

	Danceability Range
	Energy       Range
	Tempo        Range

	// TrackURLPrefix is prepended to track ids in the result
	TrackURLPrefix string
}

// DefaultParams returns the standard thresholds
func DefaultParams() Params {
	return Params{
		MinViews:       1000,
		Language:       "en",
		Danceability:   Range{Min: 0.45, Max: 0.99},
		Energy:         Range{Min: 0.45, Max: 0.75},
		Tempo:          Range{Min: 110, Max: 140},
		TrackURLPrefix: "https://open.spotify.com/track/",
	}
}

// Validate checks that every range is ordered
func (p Params) Validate() error {
	ranges := []struct {
		name string
		r    Range
	}{
		{"danceability", p.Danceability},
		{"energy", p.Energy},
		{"tempo", p.Tempo},
	}
	for _, x := range ranges {
		if x.r.Min > x.r.Max {
			return fmt.Errorf("%s range %s: min is greater than max", x.name, x.r)
		}
	}
	return nil
}

// Inputs are the five sources the pipelines read
type Inputs struct {
	Artists       query.Source // id, name
	AudioFeatures query.Source // id, danceability, energy, tempo
	Lyrics        query.Source // title, artist, lyrics, language, views
	TrackArtists  query.Source // track_id, artist_id
	Tracks        query.Source // id, name, explicit
}
