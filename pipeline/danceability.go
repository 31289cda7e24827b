package pipeline

import (
	q "github.com/vegasq/danceable/query"
)

// Danceability joins artists, tracks and audio features through the
// track-artist links and keeps the non-explicit tracks whose features fall
// in the configured ranges.
//
// The output holds (artist_name, track_name, danceability, energy,
// track_id), where track_id is the track URL. Each (artist_name,
// track_name) pair appears once, carrying the values of its most danceable
// row; ties keep the earliest row.
func Danceability(in Inputs, p Params) *q.LazyFrame {
	artists := q.Scan(in.Artists).Select(
		q.Item(q.Col("id")).As("artist_id"),
		q.Item(q.Lower(q.Col("name"))).As("artist_name"),
	)

	tracks := q.Scan(in.Tracks).
		Select(
			q.Item(q.Col("id")).As("track_id"),
			q.Item(q.Lower(q.Col("name"))).As("track_name"),
			q.Item(q.Col("explicit")),
		).
		Filter(q.Eq(q.Col("explicit"), false))

	features := q.Scan(in.AudioFeatures).
		Select(
			q.Item(q.Col("id")).As("track_id"),
			q.Item(q.Col("danceability")),
			q.Item(q.Col("energy")),
			q.Item(q.Col("tempo")),
		).
		Filter(q.And(
			p.Danceability.predicate("danceability"),
			p.Energy.predicate("energy"),
			p.Tempo.predicate("tempo"),
		))

	links := q.Scan(in.TrackArtists).Select(q.Cols("track_id", "artist_id")...)

	best := q.Desc("danceability")
	return links.
		InnerJoin(artists, "artist_id").
		InnerJoin(tracks, "track_id").
		InnerJoin(features, "track_id").
		Select(
			q.Item(q.Col("artist_name")),
			q.Item(q.Col("track_name")),
			q.Item(q.Col("danceability")),
			q.Item(q.Col("energy")),
			q.Item(q.Concat(q.Lit(p.TrackURLPrefix), q.Col("track_id"))).As("track_id"),
		).
		GroupBy("artist_name", "track_name").
		Agg(
			q.Item(q.First(q.Col("danceability"), best)),
			q.Item(q.First(q.Col("energy"), best)),
			q.Item(q.First(q.Col("track_id"), best)),
		)
}
