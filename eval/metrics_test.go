package eval

import (
	"math"
	"testing"

	"github.com/rushteam/cinekit/feature"
)

func relevantSet(ids ...string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func TestPrecisionAtK(t *testing.T) {
	tests := []struct {
		name        string
		recommended []string
		relevant    map[string]bool
		k           int
		want        float64
	}{
		{
			// 2 of the top 5 are relevant against a held-out set of 3
			name:        "two of five relevant",
			recommended: []string{"a", "x", "b", "y", "z"},
			relevant:    relevantSet("a", "b", "c"),
			k:           5,
			want:        0.4,
		},
		{
			name:        "all relevant",
			recommended: []string{"a", "b"},
			relevant:    relevantSet("a", "b"),
			k:           2,
			want:        1.0,
		},
		{
			name:        "k exceeds list length keeps denominator k",
			recommended: []string{"a"},
			relevant:    relevantSet("a"),
			k:           5,
			want:        0.2,
		},
		{
			name:        "zero k",
			recommended: []string{"a"},
			relevant:    relevantSet("a"),
			k:           0,
			want:        0,
		},
		{
			name:        "empty list",
			recommended: nil,
			relevant:    relevantSet("a"),
			k:           5,
			want:        0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrecisionAtK(tt.recommended, tt.relevant, tt.k); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("PrecisionAtK = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestRecallAtK(t *testing.T) {
	recommended := []string{"a", "x", "b", "y", "z"}
	relevant := relevantSet("a", "b", "c", "d")
	if got := RecallAtK(recommended, relevant, 5); got != 0.5 {
		t.Errorf("RecallAtK = %f, want 0.5", got)
	}
	if got := RecallAtK(recommended, map[string]bool{}, 5); got != 0 {
		t.Errorf("empty relevant set should yield 0, got %f", got)
	}
}

func TestNDCGAtK_ClosedForm(t *testing.T) {
	// relevant at positions 1 and 3, binary relevance:
	// DCG  = 1/log2(2) + 1/log2(4)      = 1.5
	// IDCG = 1/log2(2) + 1/log2(3)
	recommended := []string{"a", "x", "b"}
	relevant := relevantSet("a", "b")

	dcg := 1.0 + 1.0/math.Log2(4)
	idcg := 1.0 + 1.0/math.Log2(3)
	want := dcg / idcg

	if got := NDCGAtK(recommended, relevant, 3); math.Abs(got-want) > 1e-12 {
		t.Errorf("NDCGAtK = %f, want %f", got, want)
	}
}

func TestNDCGAtK_PerfectRanking(t *testing.T) {
	recommended := []string{"a", "b", "x"}
	relevant := relevantSet("a", "b")
	if got := NDCGAtK(recommended, relevant, 3); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("perfect ranking NDCG = %f, want 1.0", got)
	}
}

func TestNDCGAtK_ShortList(t *testing.T) {
	// a 1-item list at K=3 loses the credit of the missing slots:
	// DCG = 1, IDCG = 1/log2(2) + 1/log2(3)
	recommended := []string{"a"}
	relevant := relevantSet("a", "b")
	want := 1.0 / (1.0 + 1.0/math.Log2(3))

	if got := NDCGAtK(recommended, relevant, 3); math.Abs(got-want) > 1e-12 {
		t.Errorf("NDCGAtK = %f, want %f", got, want)
	}

	// single relevant item found at the top still scores 1.0 at any K
	if got := NDCGAtK([]string{"a"}, relevantSet("a"), 3); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("NDCGAtK = %f, want 1.0", got)
	}
}

func TestMAPAtK(t *testing.T) {
	// hits at positions 1 and 3: (1/1 + 2/3) / 2 relevant
	recommended := []string{"a", "x", "b"}
	relevant := relevantSet("a", "b")
	want := (1.0 + 2.0/3.0) / 2.0
	if got := MAPAtK(recommended, relevant, 3); math.Abs(got-want) > 1e-12 {
		t.Errorf("MAPAtK = %f, want %f", got, want)
	}

	if got := MAPAtK([]string{"x", "y"}, relevant, 2); got != 0 {
		t.Errorf("no hits should yield 0, got %f", got)
	}
}

func TestDiversity(t *testing.T) {
	vectors := map[string]feature.Vector{
		"a": {0: 1}, // orthogonal to b
		"b": {1: 1},
		"c": {0: 1}, // identical to a
	}

	t.Run("orthogonal pair", func(t *testing.T) {
		if got := Diversity([]string{"a", "b"}, vectors); math.Abs(got-1.0) > 1e-12 {
			t.Errorf("Diversity = %f, want 1.0", got)
		}
	})
	t.Run("identical pair", func(t *testing.T) {
		if got := Diversity([]string{"a", "c"}, vectors); math.Abs(got) > 1e-12 {
			t.Errorf("Diversity = %f, want 0.0", got)
		}
	})
	t.Run("missing vectors skipped", func(t *testing.T) {
		if got := Diversity([]string{"a", "ghost"}, vectors); got != 0 {
			t.Errorf("fewer than two usable vectors should yield 0, got %f", got)
		}
	})
}

func TestNovelty(t *testing.T) {
	counts := map[string]int{"popular": 50, "obscure": 1}
	catalog := 100

	pop := Novelty([]string{"popular"}, counts, catalog)
	obs := Novelty([]string{"obscure"}, counts, catalog)
	if obs <= pop {
		t.Errorf("obscure item novelty %f should exceed popular item novelty %f", obs, pop)
	}
	// -log2(50/100) = 1
	if math.Abs(pop-1.0) > 1e-12 {
		t.Errorf("Novelty(popular) = %f, want 1.0", pop)
	}

	if got := Novelty([]string{"unrated"}, counts, catalog); got <= obs {
		t.Errorf("never-rated item should be the most novel, got %f", got)
	}
}

func TestCoverage(t *testing.T) {
	recs := map[string][]string{
		"u1": {"a", "b"},
		"u2": {"b", "c"},
	}
	if got := Coverage(recs, 10); got != 0.3 {
		t.Errorf("Coverage = %f, want 0.3", got)
	}
	if got := Coverage(recs, 0); got != 0 {
		t.Errorf("zero catalog should yield 0, got %f", got)
	}
}

func TestEvaluate_Report(t *testing.T) {
	recommended := map[string][]string{
		"u1": {"a", "x", "b", "y", "z"},
		"u2": {"p", "q"},
	}
	relevant := map[string]map[string]bool{
		"u1": relevantSet("a", "b", "c"),
		"u2": relevantSet("p"),
		"u3": {}, // no relevant items, excluded from averaging
	}

	report := Evaluate(recommended, relevant, []int{5, 3},
		WithPopularity(map[string]int{"a": 10, "b": 1}, 20))

	if report.Users != 2 {
		t.Fatalf("Users = %d, want 2", report.Users)
	}
	if len(report.ByK) != 2 || report.ByK[0].K != 3 || report.ByK[1].K != 5 {
		t.Fatalf("ByK not sorted ascending: %+v", report.ByK)
	}

	// precision@5: u1 = 2/5, u2 = 1/5, mean = 0.3
	if got := report.ByK[1].Precision; math.Abs(got-0.3) > 1e-12 {
		t.Errorf("mean Precision@5 = %f, want 0.3", got)
	}
	// coverage over max K: 7 distinct ids of 20
	if got := report.Coverage; math.Abs(got-0.35) > 1e-12 {
		t.Errorf("Coverage = %f, want 0.35", got)
	}
}
