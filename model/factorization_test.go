package model

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/cinekit/core"
)

// block-structured ratings: u1/u2 love m1/m2 and hate m3/m4, u3/u4 the opposite
func blockRatings() []Rating {
	return []Rating{
		{UserID: "u1", MovieID: "m1", Score: 5}, {UserID: "u1", MovieID: "m2", Score: 4.5},
		{UserID: "u1", MovieID: "m3", Score: 1}, {UserID: "u1", MovieID: "m4", Score: 1.5},
		{UserID: "u2", MovieID: "m1", Score: 4.5}, {UserID: "u2", MovieID: "m2", Score: 5},
		{UserID: "u2", MovieID: "m3", Score: 1.5}, {UserID: "u2", MovieID: "m4", Score: 1},
		{UserID: "u3", MovieID: "m1", Score: 1}, {UserID: "u3", MovieID: "m2", Score: 1.5},
		{UserID: "u3", MovieID: "m3", Score: 5}, {UserID: "u3", MovieID: "m4", Score: 4.5},
		{UserID: "u4", MovieID: "m1", Score: 1.5}, {UserID: "u4", MovieID: "m2", Score: 1},
		{UserID: "u4", MovieID: "m3", Score: 4.5},
	}
}

func trainCfg(solver string) core.EngineConfig {
	cfg := core.DefaultEngineConfig()
	cfg.Factors = 4
	cfg.Epochs = 50
	cfg.Solver = solver
	return cfg.Normalize()
}

func TestNewMatrix(t *testing.T) {
	m := NewMatrix(blockRatings())

	if len(m.Users) != 4 || len(m.Items) != 4 {
		t.Fatalf("got %d users, %d items", len(m.Users), len(m.Items))
	}
	for i := 1; i < len(m.Users); i++ {
		if m.Users[i-1] >= m.Users[i] {
			t.Errorf("users not sorted: %v", m.Users)
		}
	}
	for i := 1; i < len(m.Items); i++ {
		if m.Items[i-1] >= m.Items[i] {
			t.Errorf("items not sorted: %v", m.Items)
		}
	}
	if m.NumRatings != 15 {
		t.Errorf("NumRatings = %d, want 15", m.NumRatings)
	}
	if m.UserRatingCount("u4") != 3 {
		t.Errorf("UserRatingCount(u4) = %d, want 3", m.UserRatingCount("u4"))
	}
	if m.UserRatingCount("ghost") != 0 {
		t.Errorf("unknown user should have zero count")
	}
	if m.ItemRatingCount("m4") != 3 {
		t.Errorf("ItemRatingCount(m4) = %d, want 3", m.ItemRatingCount("m4"))
	}
}

func TestNewMatrix_DuplicatesKeepLast(t *testing.T) {
	m := NewMatrix([]Rating{
		{UserID: "u1", MovieID: "m1", Score: 2},
		{UserID: "u1", MovieID: "m1", Score: 4},
	})
	if m.NumRatings != 1 {
		t.Fatalf("NumRatings = %d, want 1", m.NumRatings)
	}
	if got := m.Rows[0][0].Score; got != 4 {
		t.Errorf("duplicate rating should keep last value, got %f", got)
	}
}

func rmse(mdl *LatentFactorModel, m *Matrix) float64 {
	var sum float64
	var n int
	for uIdx, row := range m.Rows {
		for _, e := range row {
			d := e.Score - mdl.Predict(uIdx, e.Index)
			sum += d * d
			n++
		}
	}
	return math.Sqrt(sum / float64(n))
}

func baselineRMSE(m *Matrix) float64 {
	var sum float64
	var n int
	for _, row := range m.Rows {
		for _, e := range row {
			d := e.Score - m.Mean
			sum += d * d
			n++
		}
	}
	return math.Sqrt(sum / float64(n))
}

func TestSolvers_FitBlockStructure(t *testing.T) {
	for _, solver := range []string{"sgd", "als"} {
		t.Run(solver, func(t *testing.T) {
			m := NewMatrix(blockRatings())
			cfg := trainCfg(solver)
			mdl, err := NewSolver(cfg).Train(context.Background(), m, cfg)
			if err != nil {
				t.Fatalf("Train failed: %v", err)
			}

			if got := rmse(mdl, m); got >= baselineRMSE(m) {
				t.Errorf("training RMSE %f should beat global-mean baseline %f", got, baselineRMSE(m))
			}

			// u4 never rated m4 but matches the u3 block, which hated m1/m2;
			// the model should rank m4 above nothing else is unrated, so just
			// check the prediction is within a sane range
			uIdx := m.UserIndex["u4"]
			iIdx := m.ItemIndex["m4"]
			pred := mdl.Predict(uIdx, iIdx)
			if math.IsNaN(pred) || math.IsInf(pred, 0) {
				t.Fatalf("prediction is not finite: %f", pred)
			}
		})
	}
}

func TestTrain_Deterministic(t *testing.T) {
	m := NewMatrix(blockRatings())
	cfg := trainCfg("sgd")
	mdl1, err := NewSolver(cfg).Train(context.Background(), m, cfg)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	mdl2, err := NewSolver(cfg).Train(context.Background(), NewMatrix(blockRatings()), cfg)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	for u := range mdl1.UserFactors {
		for k := range mdl1.UserFactors[u] {
			if mdl1.UserFactors[u][k] != mdl2.UserFactors[u][k] {
				t.Fatalf("user factor (%d,%d) differs between identical trainings", u, k)
			}
		}
	}
}

func TestTrain_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMatrix(blockRatings())
	cfg := trainCfg("sgd")
	if _, err := NewSolver(cfg).Train(ctx, m, cfg); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestScoreUser(t *testing.T) {
	m := NewMatrix(blockRatings())
	cfg := trainCfg("sgd")
	mdl, err := NewSolver(cfg).Train(context.Background(), m, cfg)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	t.Run("unknown user", func(t *testing.T) {
		_, err := mdl.ScoreUser("ghost", 10, 0)
		if err == nil || !core.IsUnknownUser(err) {
			t.Fatalf("expected UNKNOWN_USER, got %v", err)
		}
	})

	t.Run("rated movies excluded", func(t *testing.T) {
		scored, err := mdl.ScoreUser("u4", 10, 0)
		if err != nil {
			t.Fatalf("ScoreUser failed: %v", err)
		}
		// u4 rated m1, m2, m3; only m4 is left
		if len(scored) != 1 || scored[0].MovieID != "m4" {
			t.Fatalf("scored = %+v, want only m4", scored)
		}
	})

	t.Run("thin items skipped", func(t *testing.T) {
		// m4 has 3 ratings; requiring 4 removes the only candidate
		scored, err := mdl.ScoreUser("u4", 10, 4)
		if err != nil {
			t.Fatalf("ScoreUser failed: %v", err)
		}
		if len(scored) != 0 {
			t.Fatalf("scored = %+v, want empty", scored)
		}
	})
}

func TestSolveLinear(t *testing.T) {
	// 2x + y = 5 ; x + 3y = 10  ->  x = 1, y = 3
	a := [][]float64{{2, 1}, {1, 3}}
	b := []float64{5, 10}
	sol, ok := solveLinear(a, b)
	if !ok {
		t.Fatal("system should be solvable")
	}
	if math.Abs(sol[0]-1) > 1e-9 || math.Abs(sol[1]-3) > 1e-9 {
		t.Errorf("solution = %v, want [1 3]", sol)
	}

	// singular system
	a = [][]float64{{1, 1}, {2, 2}}
	b = []float64{1, 2}
	if _, ok := solveLinear(a, b); ok {
		t.Error("singular system should report not ok")
	}
}

func TestFromRatings(t *testing.T) {
	src := []core.Rating{{UserID: "u1", MovieID: "m1", Score: 3.5}}
	got := FromRatings(src)
	if len(got) != 1 || got[0].UserID != "u1" || got[0].Score != 3.5 {
		t.Fatalf("FromRatings = %+v", got)
	}
}
