package pipeline

import (
	q "github.com/vegasq/danceable/query"
)

// LyricsFilter keeps the lyrics rows that are popular, in the configured
// language and mention at least one keyword, ignoring case.
//
// The output holds (track_name, artist_name), both lower-cased. An empty
// keyword list puts no constraint on the lyrics text; empty keywords are
// ignored.
func LyricsFilter(lyrics q.Source, keywords []string, p Params) *q.LazyFrame {
	conds := []q.Expression{
		q.Gt(q.Col("views"), p.MinViews),
		q.Eq(q.Col("language"), p.Language),
	}
	if kw := keywordPredicate(keywords); kw != nil {
		conds = append(conds, kw)
	}

	return q.Scan(lyrics).
		Select(
			q.Item(q.Lower(q.Col("title"))).As("track_name"),
			q.Item(q.Lower(q.Col("artist"))).As("artist_name"),
			q.Item(q.Col("lyrics")),
			q.Item(q.Col("language")),
			q.Item(q.Col("views")),
		).
		Filter(q.And(conds...)).
		Select(q.Cols("track_name", "artist_name")...)
}

// keywordPredicate ORs case-insensitive substring tests. It returns nil when
// there is nothing to test.
func keywordPredicate(keywords []string) q.Expression {
	var tests []q.Expression
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		tests = append(tests, q.Contains(q.Col("lyrics"), kw, true))
	}
	if len(tests) == 0 {
		return nil
	}
	return q.Or(tests...)
}
