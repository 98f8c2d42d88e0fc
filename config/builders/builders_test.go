package builders

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/cinekit/config"
	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/rerank"
)

const rankYAML = `
pipeline:
  name: rank
  nodes:
    - type: blend.combiner
      config:
        default_weight: 0.5
    - type: rerank.diversity
      config:
        max_per_genre: 1
    - type: rerank.topn
      config:
        n: 3
`

func loadRankConfig(t *testing.T) *pipeline.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rank.yaml")
	if err := os.WriteFile(path, []byte(rankYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := pipeline.LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML failed: %v", err)
	}
	return cfg
}

func TestInitRegistersBuiltinNodes(t *testing.T) {
	registered := make(map[string]bool)
	for _, typ := range config.SupportedTypes() {
		registered[typ] = true
	}
	for _, typ := range []string{"blend.combiner", "filter.expr", "rerank.topn", "rerank.diversity"} {
		if !registered[typ] {
			t.Errorf("node type %q not registered", typ)
		}
	}
}

func TestBuildPipelineFromYAML(t *testing.T) {
	cfg := loadRankConfig(t)
	if err := config.ValidatePipelineConfig(cfg); err != nil {
		t.Fatalf("ValidatePipelineConfig failed: %v", err)
	}

	p, err := cfg.BuildPipeline(config.DefaultFactory())
	if err != nil {
		t.Fatalf("BuildPipeline failed: %v", err)
	}
	if len(p.Nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(p.Nodes))
	}

	// 多样性节点的电影索引持有运行态数据，装配后注入
	div, ok := p.Nodes[1].(*rerank.Diversity)
	if !ok {
		t.Fatalf("node 1 is %T, want *rerank.Diversity", p.Nodes[1])
	}
	div.Movies = map[string]*core.Movie{
		"a": {ID: "a", Genres: []string{"Action"}},
		"b": {ID: "b", Genres: []string{"Action"}},
		"c": {ID: "c", Genres: []string{"Action"}},
		"d": {ID: "d", Genres: []string{"Action"}},
		"e": {ID: "e", Genres: []string{"Drama"}},
	}

	items := make([]*core.Item, 0, 5)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		it := core.NewItem(id)
		it.Features["content_raw"] = float64(5 - i)
		items = append(items, it)
	}

	out, err := p.Run(context.Background(), &core.RecommendContext{}, items)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// 每题材保留 1 部：a（Action 第一名）与 e（Drama 唯一）
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "e" {
		got := make([]string, 0, len(out))
		for _, it := range out {
			got = append(got, it.ID)
		}
		t.Fatalf("out = %v, want [a e]", got)
	}
	if out[0].Score <= out[1].Score {
		t.Errorf("scores not descending: %f vs %f", out[0].Score, out[1].Score)
	}
}

func TestBuildPipelineUnknownType(t *testing.T) {
	var cfg pipeline.Config
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "rank.mmoe"}}
	if err := config.ValidatePipelineConfig(&cfg); err == nil {
		t.Error("unregistered node type should fail validation")
	}
	if _, err := cfg.BuildPipeline(config.DefaultFactory()); err == nil {
		t.Error("BuildPipeline should fail for unregistered type")
	}
}
