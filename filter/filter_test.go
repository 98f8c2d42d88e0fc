package filter

import (
	"context"
	"testing"

	"github.com/rushteam/cinekit/core"
)

func itemList(ids ...string) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.NewItem(id))
	}
	return out
}

func idList(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestSeenFilter(t *testing.T) {
	node := &FilterNode{Filters: []Filter{
		&SeenFilter{RatedIDs: map[string]struct{}{"rated": {}}},
	}}
	rctx := &core.RecommendContext{LikedIDs: []string{"liked"}}

	out, err := node.Process(context.Background(), rctx, itemList("liked", "rated", "fresh"))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(out) != 1 || out[0].ID != "fresh" {
		t.Fatalf("out = %v, want [fresh]", idList(out))
	}
}

func TestGenreFilter(t *testing.T) {
	movies := map[string]*core.Movie{
		"action": {ID: "action", Genres: []string{"Action", "Thriller"}},
		"drama":  {ID: "drama", Genres: []string{"Drama"}},
	}
	node := &FilterNode{Filters: []Filter{&GenreFilter{Movies: movies}}}

	t.Run("no prefs passes everything", func(t *testing.T) {
		out, err := node.Process(context.Background(), &core.RecommendContext{}, itemList("action", "drama"))
		if err != nil || len(out) != 2 {
			t.Fatalf("out = %v / %v", idList(out), err)
		}
	})

	t.Run("prefs filter case-insensitively", func(t *testing.T) {
		rctx := &core.RecommendContext{GenrePrefs: []string{"thriller"}}
		out, err := node.Process(context.Background(), rctx, itemList("action", "drama"))
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}
		if len(out) != 1 || out[0].ID != "action" {
			t.Fatalf("out = %v, want [action]", idList(out))
		}
	})

	t.Run("unknown movie filtered when prefs set", func(t *testing.T) {
		rctx := &core.RecommendContext{GenrePrefs: []string{"Action"}}
		out, err := node.Process(context.Background(), rctx, itemList("ghost"))
		if err != nil || len(out) != 0 {
			t.Fatalf("out = %v / %v, want empty", idList(out), err)
		}
	})
}

func TestExprNode(t *testing.T) {
	t.Run("no expression passes through", func(t *testing.T) {
		node := &ExprNode{}
		items := itemList("a", "b")
		out, err := node.Process(context.Background(), &core.RecommendContext{}, items)
		if err != nil || len(out) != 2 {
			t.Fatalf("out = %v / %v", idList(out), err)
		}
	})

	t.Run("expression filters by score", func(t *testing.T) {
		node := &ExprNode{}
		items := itemList("low", "high")
		items[0].Score = 0.1
		items[1].Score = 0.9
		rctx := &core.RecommendContext{Filter: "item.score > 0.5"}
		out, err := node.Process(context.Background(), rctx, items)
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}
		if len(out) != 1 || out[0].ID != "high" {
			t.Fatalf("out = %v, want [high]", idList(out))
		}
	})

	t.Run("invalid expression is a validation error", func(t *testing.T) {
		node := &ExprNode{}
		rctx := &core.RecommendContext{Filter: "item.score >"}
		_, err := node.Process(context.Background(), rctx, itemList("a"))
		if !core.IsValidation(err) {
			t.Fatalf("expected VALIDATION, got %v", err)
		}
	})
}
