package anomalycnn

import (
	"testing"

	_ "github.com/gomlx/gomlx/backends/default"
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/graph/graphtest"
)

func TestPreprocessImage(t *testing.T) {
	graphtest.RunTestGraphFn(t, "PreprocessImage", func(g *Graph) (inputs, outputs []*Node) {
		rgba := Const(g, [][][][]uint8{{
			{{0, 0, 0, 255}, {255, 255, 255, 255}},
			{{255, 0, 0, 0}, {0, 255, 255, 128}},
		}})
		inputs = []*Node{rgba}
		outputs = []*Node{PreprocessImage(rgba, 2, 2)}
		return
	}, []any{
		[][][][]float32{{
			{{-1}, {1}},
			{{-1.0 / 3}, {1.0 / 3}},
		}},
	}, 1e-5)
}

func TestPreprocessImageResize(t *testing.T) {
	graphtest.RunTestGraphFn(t, "PreprocessImage resize", func(g *Graph) (inputs, outputs []*Node) {
		gray := Const(g, [][][][]float32{{
			{{0.5}, {0.5}},
			{{0.5}, {0.5}},
		}})
		inputs = []*Node{gray}
		outputs = []*Node{PreprocessImage(gray, 4, 4)}
		return
	}, []any{
		[][][][]float32{{
			{{0.5}, {0.5}, {0.5}, {0.5}},
			{{0.5}, {0.5}, {0.5}, {0.5}},
			{{0.5}, {0.5}, {0.5}, {0.5}},
			{{0.5}, {0.5}, {0.5}, {0.5}},
		}},
	}, 1e-5)
}
