package pipeline

import (
	q "github.com/vegasq/danceable/query"
)

// ResultColumns is the column order of the assembled result
var ResultColumns = []string{"artist_name", "track_name", "danceability", "energy", "track_id"}

// Assemble joins the lyrics and danceability outputs on (artist_name,
// track_name) and sorts by danceability, highest first. Equal danceability
// keeps join order. A positive limit keeps only the first rows.
func Assemble(lyrics, dance *q.LazyFrame, limit int64) *q.LazyFrame {
	result := lyrics.
		InnerJoin(dance, "artist_name", "track_name").
		Select(q.Cols(ResultColumns...)...).
		Sort(q.Desc("danceability"))
	if limit > 0 {
		result = result.Limit(limit, 0)
	}
	return result
}

// Build wires the three stages together
func Build(in Inputs, keywords []string, p Params, limit int64) *q.LazyFrame {
	return Assemble(LyricsFilter(in.Lyrics, keywords, p), Danceability(in, p), limit)
}
