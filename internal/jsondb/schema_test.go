package jsondb

import (
	"slices"
	"testing"
)

func TestSchema(t *testing.T) {
	s := setupTable(t, false).Schema()
	if s.Title != "jsondb.testObj" {
		t.Errorf("Title = %q", s.Title)
	}
	var names []string
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	if want := []string{"name", "age", "rank", "something"}; !slices.Equal(names, want) {
		t.Errorf("properties = %v, want %v", names, want)
	}
	if !slices.Contains(s.Required, "name") || slices.Contains(s.Required, "something") {
		t.Errorf("required = %v", s.Required)
	}

	ptr, err := NewTable[*otherObj](New(Options{Root: t.TempDir()}), "other")
	if err != nil {
		t.Fatal(err)
	}
	if p := ptr.Schema().Properties; p == nil || p.Len() != 1 {
		t.Errorf("pointer schema properties = %v", p)
	}
}
