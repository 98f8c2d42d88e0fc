package recall

import (
	"context"
	"testing"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/store"
)

func popMovies() map[string]*core.Movie {
	return map[string]*core.Movie{
		"m1": {ID: "m1", Genres: []string{"Action"}},
		"m2": {ID: "m2", Genres: []string{"Drama"}},
		"m3": {ID: "m3", Genres: []string{"Action"}},
	}
}

func TestPopularitySource_MemoryEntries(t *testing.T) {
	src := &PopularitySource{
		Entries: []PopEntry{
			{MovieID: "m1", Score: 4.8},
			{MovieID: "m2", Score: 4.2},
			{MovieID: "m3", Score: 3.9},
		},
		Movies: popMovies(),
		TopK:   2,
	}

	items, err := src.Recall(context.Background(), &core.RecommendContext{})
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}
	if len(items) != 2 || items[0].ID != "m1" || items[1].ID != "m2" {
		t.Fatalf("items = %v, want [m1 m2]", ids(items))
	}
	lbl, ok := items[0].GetLabel("recall_source")
	if !ok || lbl.Value != "fallback" {
		t.Error("fallback label missing")
	}
}

func TestPopularitySource_GenreFilter(t *testing.T) {
	src := &PopularitySource{
		Entries: []PopEntry{
			{MovieID: "m1", Score: 4.8},
			{MovieID: "m2", Score: 4.2},
			{MovieID: "m3", Score: 3.9},
		},
		Movies: popMovies(),
		TopK:   5,
	}

	items, err := src.Recall(context.Background(),
		&core.RecommendContext{GenrePrefs: []string{"action"}})
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}
	if len(items) != 2 || items[0].ID != "m1" || items[1].ID != "m3" {
		t.Fatalf("genre-filtered items = %v, want [m1 m3]", ids(items))
	}
}

func TestPopularitySource_StoreBacked(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()

	ctx := context.Background()
	key := "test:hot"
	for _, e := range []PopEntry{
		{MovieID: "m2", Score: 4.2},
		{MovieID: "m1", Score: 4.8},
	} {
		if err := kv.ZAdd(ctx, key, e.Score, e.MovieID); err != nil {
			t.Fatalf("ZAdd failed: %v", err)
		}
	}

	src := &PopularitySource{
		Movies: popMovies(),
		Store:  kv,
		Key:    key,
		TopK:   5,
	}
	items, err := src.Recall(ctx, &core.RecommendContext{})
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}
	if len(items) != 2 || items[0].ID != "m1" || items[1].ID != "m2" {
		t.Fatalf("store-backed items = %v, want [m1 m2]", ids(items))
	}
}

func TestPopularitySource_Empty(t *testing.T) {
	src := &PopularitySource{Movies: popMovies()}
	items, err := src.Recall(context.Background(), &core.RecommendContext{})
	if err != nil || len(items) != 0 {
		t.Fatalf("no heat data should yield empty result, got %v / %v", ids(items), err)
	}
}
