package blend

import (
	"testing"

	"github.com/rushteam/cinekit/core"
)

func defaultWeights() WeightConfig {
	return WeightConfigFrom(core.DefaultEngineConfig())
}

func TestWeight_Defaults(t *testing.T) {
	cfg := defaultWeights()
	if got := Weight(cfg, 0, 0); got != cfg.Default {
		t.Errorf("no signals should yield default weight, got %f", got)
	}
}

func TestWeight_MonotonicInRatings(t *testing.T) {
	cfg := defaultWeights()
	prev := Weight(cfg, 0, 3)
	for _, ratings := range []int{1, 2, 5, 10, 20, 50, 100, 1000} {
		w := Weight(cfg, ratings, 3)
		if w > prev {
			t.Fatalf("weight increased from %f to %f at ratings=%d", prev, w, ratings)
		}
		prev = w
	}
}

func TestWeight_MonotonicInLiked(t *testing.T) {
	cfg := defaultWeights()
	prev := Weight(cfg, 10, 0)
	for _, liked := range []int{1, 2, 3, 5, 10, 50, 200} {
		w := Weight(cfg, 10, liked)
		if w < prev {
			t.Fatalf("weight decreased from %f to %f at liked=%d", prev, w, liked)
		}
		prev = w
	}
}

func TestWeight_Saturates(t *testing.T) {
	cfg := defaultWeights()
	tests := []struct {
		name    string
		ratings int
		liked   int
	}{
		{name: "heavy rater", ratings: 1000000, liked: 0},
		{name: "huge liked list", ratings: 0, liked: 1000000},
		{name: "both extreme", ratings: 1000000, liked: 1000000},
		{name: "negative counts treated as zero", ratings: -5, liked: -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Weight(cfg, tt.ratings, tt.liked)
			if w < cfg.Min || w > cfg.Max {
				t.Errorf("weight %f outside [%f, %f]", w, cfg.Min, cfg.Max)
			}
		})
	}
}

func TestWeight_NeverZeroesEitherSide(t *testing.T) {
	cfg := defaultWeights()
	w := Weight(cfg, 1000000, 0)
	if w <= 0 {
		t.Errorf("content side fully zeroed: %f", w)
	}
	if 1-Weight(cfg, 0, 1000000) <= 0 {
		t.Errorf("collaborative side fully zeroed")
	}
}
