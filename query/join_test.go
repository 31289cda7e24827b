package query

import (
	"errors"
	"testing"

	"github.com/vegasq/danceable/table"
)

func TestApplyJoin_Inner(t *testing.T) {
	left := table.MustNew(
		table.Strings("track_id", "t1", "t2", "t3", "t1"),
		table.Strings("title", "one", "two", "three", "one again"),
	)
	right := table.MustNew(
		table.Strings("track_id", "t1", "t3", "t1", "t9"),
		table.Strings("artist_id", "a1", "a3", "a2", "a9"),
	)

	got, err := ApplyJoin(left, right, JoinSpec{Type: JoinInner, LeftOn: []string{"track_id"}, RightOn: []string{"track_id"}})
	if err != nil {
		t.Fatalf("ApplyJoin() error = %v", err)
	}

	names := got.ColumnNames()
	if len(names) != 3 || names[0] != "track_id" || names[1] != "title" || names[2] != "artist_id" {
		t.Fatalf("ColumnNames() = %v, want [track_id title artist_id]", names)
	}

	// left order, then right order within a key
	assertStrings(t, got, "title", []string{"one", "one", "three", "one again", "one again"})
	assertStrings(t, got, "artist_id", []string{"a1", "a2", "a3", "a1", "a2"})
}

func TestApplyJoin_DifferentKeyNames(t *testing.T) {
	left := table.MustNew(table.Ints("id", 1, 2), table.Strings("name", "x", "y"))
	right := table.MustNew(table.Ints("artist_id", 2, 1), table.Strings("genre", "pop", "rock"))

	got, err := ApplyJoin(left, right, JoinSpec{Type: JoinInner, LeftOn: []string{"id"}, RightOn: []string{"artist_id"}})
	if err != nil {
		t.Fatalf("ApplyJoin() error = %v", err)
	}
	if got.HasColumn("artist_id") {
		t.Errorf("right key column should be dropped, got %v", got.ColumnNames())
	}
	assertStrings(t, got, "genre", []string{"rock", "pop"})
}

func TestApplyJoin_Left(t *testing.T) {
	left := table.MustNew(table.NewColumn("k", []interface{}{"a", "b", nil}), table.Ints("v", 1, 2, 3))
	right := table.MustNew(table.Strings("k", "a"), table.Strings("w", "wa"))

	got, err := ApplyJoin(left, right, JoinSpec{Type: JoinLeft, LeftOn: []string{"k"}, RightOn: []string{"k"}})
	if err != nil {
		t.Fatalf("ApplyJoin() error = %v", err)
	}
	if got.NumRows() != 3 {
		t.Fatalf("NumRows() = %d, want 3", got.NumRows())
	}
	w, _ := got.Column("w")
	if w.Values[0] != "wa" || w.Values[1] != nil || w.Values[2] != nil {
		t.Errorf("w = %v, want [wa <nil> <nil>]", w.Values)
	}
}

func TestApplyJoin_NullKeysNeverMatch(t *testing.T) {
	left := table.MustNew(table.NewColumn("k", []interface{}{nil, "a"}))
	right := table.MustNew(table.NewColumn("k", []interface{}{nil, "a"}), table.Ints("v", 1, 2))

	got, err := ApplyJoin(left, right, JoinSpec{Type: JoinInner, LeftOn: []string{"k"}, RightOn: []string{"k"}})
	if err != nil {
		t.Fatalf("ApplyJoin() error = %v", err)
	}
	if got.NumRows() != 1 {
		t.Errorf("NumRows() = %d, want 1", got.NumRows())
	}
}

func TestApplyJoin_Errors(t *testing.T) {
	left := table.MustNew(table.Strings("id", "1"), table.Strings("name", "x"))
	right := table.MustNew(table.Ints("id", 1), table.Strings("genre", "y"), table.Strings("other_id", "1"))

	tests := []struct {
		name       string
		spec       JoinSpec
		wantJoin   bool
		wantSchema bool
	}{
		{"missing left key", JoinSpec{LeftOn: []string{"nope"}, RightOn: []string{"id"}}, true, false},
		{"missing right key", JoinSpec{LeftOn: []string{"id"}, RightOn: []string{"nope"}}, true, false},
		{"key count mismatch", JoinSpec{LeftOn: []string{"id"}, RightOn: []string{"id", "genre"}}, true, false},
		{"no keys", JoinSpec{}, true, false},
		{"type mismatch", JoinSpec{LeftOn: []string{"id"}, RightOn: []string{"id"}}, true, false},
		{"column collision", JoinSpec{LeftOn: []string{"id"}, RightOn: []string{"other_id"}}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyJoin(left, right, tt.spec)
			var joinErr *JoinError
			var schemaErr *SchemaError
			if tt.wantJoin && !errors.As(err, &joinErr) {
				t.Errorf("ApplyJoin() error = %v, want *JoinError", err)
			}
			if tt.wantSchema && !errors.As(err, &schemaErr) {
				t.Errorf("ApplyJoin() error = %v, want *SchemaError", err)
			}
		})
	}
}
