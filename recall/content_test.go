package recall

import (
	"context"
	"testing"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/feature"
)

type staticProvider struct {
	set *feature.FeatureSet
}

func (p *staticProvider) Current() *feature.FeatureSet { return p.set }

func fittedSet(t *testing.T) *feature.FeatureSet {
	t.Helper()
	set, err := feature.Build([]*core.Movie{
		{ID: "m1", Title: "Alpha", Genres: []string{"Sci-Fi"}, Director: "Kubrick", Synopsis: "space voyage"},
		{ID: "m2", Title: "Beta", Genres: []string{"Sci-Fi"}, Director: "Kubrick", Synopsis: "space station"},
		{ID: "m3", Title: "Gamma", Genres: []string{"Romance"}, Director: "Ephron", Synopsis: "city love story"},
	}, 2.0, 5)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return set
}

func TestContentSource_NotFitted(t *testing.T) {
	src := &ContentSource{Provider: &staticProvider{}}
	_, err := src.Recall(context.Background(), &core.RecommendContext{LikedIDs: []string{"m1"}})
	if err == nil || !core.IsNotFitted(err) {
		t.Fatalf("expected NOT_FITTED, got %v", err)
	}
}

func TestContentSource_Recall(t *testing.T) {
	src := &ContentSource{Provider: &staticProvider{set: fittedSet(t)}}

	items, err := src.Recall(context.Background(), &core.RecommendContext{LikedIDs: []string{"m1"}})
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}

	for _, it := range items {
		if it.ID == "m1" {
			t.Error("liked movie must not appear in candidates")
		}
		if it.Features["content_raw"] <= 0 {
			t.Errorf("candidate %s has non-positive raw score", it.ID)
		}
		lbl, ok := it.GetLabel("recall_source")
		if !ok || lbl.Value != "content" {
			t.Errorf("candidate %s missing content source label", it.ID)
		}
	}
	// m2 shares genre+director+synopsis word with m1, m3 shares nothing
	if len(items) != 1 || items[0].ID != "m2" {
		t.Fatalf("items = %v, want only m2", ids(items))
	}
}

func TestContentSource_UnknownLikedSkipped(t *testing.T) {
	src := &ContentSource{Provider: &staticProvider{set: fittedSet(t)}}

	items, err := src.Recall(context.Background(),
		&core.RecommendContext{LikedIDs: []string{"ghost", "m1"}})
	if err != nil {
		t.Fatalf("unknown liked id must not fail the call: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("known liked id should still drive recall")
	}

	// all liked ids unknown: empty result, nil error
	items, err = src.Recall(context.Background(),
		&core.RecommendContext{LikedIDs: []string{"ghost"}})
	if err != nil || len(items) != 0 {
		t.Fatalf("all-unknown liked list should yield empty result, got %v / %v", ids(items), err)
	}
}

func TestContentSource_EmptyLiked(t *testing.T) {
	src := &ContentSource{Provider: &staticProvider{set: fittedSet(t)}}
	items, err := src.Recall(context.Background(), &core.RecommendContext{})
	if err != nil || items != nil {
		t.Fatalf("empty liked list should be a no-op, got %v / %v", ids(items), err)
	}
}

func TestContentSource_MetadataOutweighsFreeText(t *testing.T) {
	// a 只与 b 同题材、只与 c 同导演、只与 d 共享一个简介词；
	// 类别字段权重更高，b 和 c 都应排在 d 前面
	set, err := feature.Build([]*core.Movie{
		{ID: "a", Title: "A", Genres: []string{"Action"}, Director: "X", Synopsis: "heist in the city"},
		{ID: "b", Title: "B", Genres: []string{"Action"}, Director: "Y", Synopsis: "desert chase"},
		{ID: "c", Title: "C", Genres: []string{"Drama"}, Director: "X", Synopsis: "quiet family years"},
		{ID: "d", Title: "D", Genres: []string{"Romance"}, Director: "Z", Synopsis: "love in the city"},
	}, 2.0, 5)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	src := &ContentSource{Provider: &staticProvider{set: set}}

	items, err := src.Recall(context.Background(), &core.RecommendContext{LikedIDs: []string{"a"}})
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}
	rank := make(map[string]int)
	for i, it := range items {
		rank[it.ID] = i
	}
	dPos, dIn := rank["d"]
	for _, id := range []string{"b", "c"} {
		pos, ok := rank[id]
		if !ok {
			t.Fatalf("%s missing from candidates: %v", id, ids(items))
		}
		if dIn && pos > dPos {
			t.Errorf("%s ranked below d: %v", id, ids(items))
		}
	}
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
