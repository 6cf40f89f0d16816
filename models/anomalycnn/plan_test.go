package anomalycnn

import (
	"errors"
	"strings"
	"testing"
)

func TestNewPlanDefault(t *testing.T) {
	plan, err := NewPlan(DefaultImageSize, DefaultImageSize, DefaultLayerTable(), 1)
	if err != nil {
		t.Fatal(err)
	}
	expectedSizes := []int{126, 126, 126, 63, 63, 63, 63, 63, 63, 63, 63, 126, 126, 126, 126, 126, 126}
	if len(plan.Layers) != len(expectedSizes) {
		t.Fatalf("expected %d layers, got %d", len(expectedSizes), len(plan.Layers))
	}
	for i, lp := range plan.Layers {
		if lp.Out.Height != expectedSizes[i] || lp.Out.Width != expectedSizes[i] {
			t.Errorf("layer %d: expected %dx%d, got %dx%d", i, expectedSizes[i], expectedSizes[i],
				lp.Out.Height, lp.Out.Width)
		}
		if lp.Padding != lp.Layer.DilationRate {
			t.Errorf("layer %d: padding %d should match dilation %d", i, lp.Padding, lp.Layer.DilationRate)
		}
		if lp.Upsample != (i == DefaultUpsampleAfter) {
			t.Errorf("layer %d: unexpected upsample=%v", i, lp.Upsample)
		}
	}
	if plan.FinalPadH != 1 || plan.FinalPadW != 1 {
		t.Errorf("expected final padding 1, got %d,%d", plan.FinalPadH, plan.FinalPadW)
	}
	if out := plan.Output(); out != (Dims{Height: 128, Width: 128, Channels: 1}) {
		t.Errorf("unexpected output %+v", out)
	}
	if !strings.Contains(plan.String(), "output 128x128x1") {
		t.Errorf("unexpected plan string:\n%s", plan)
	}
}

func TestNewPlanWidth(t *testing.T) {
	plan, err := NewPlan(DefaultImageSize, DefaultImageSize, DefaultLayerTable(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := plan.Layers[0].Out.Channels; got != 64 {
		t.Errorf("expected 64 channels on the first layer, got %d", got)
	}
	if got := plan.Output().Channels; got != 1 {
		t.Errorf("expected a single channel output, got %d", got)
	}
}

func TestNewPlanErrors(t *testing.T) {
	small := LayerTable{
		Layers:        []ConvLayer{{KernelSize: 3, DilationRate: 8, Strides: 1, Filters: 1}},
		UpsampleAfter: -1,
	}
	if _, err := NewPlan(8, 8, small, 1); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("padding larger than the image should fail with ErrInvalidShape, got %v", err)
	}

	// 15 -> 8 with stride 2, which cannot be padded back symmetrically.
	strided := LayerTable{
		Layers:        []ConvLayer{{KernelSize: 3, DilationRate: 1, Strides: 2, Filters: 1}},
		UpsampleAfter: -1,
	}
	if _, err := NewPlan(15, 15, strided, 1); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape, got %v", err)
	}

	stridedAndDilated := LayerTable{
		Layers:        []ConvLayer{{KernelSize: 3, DilationRate: 2, Strides: 2, Filters: 1}},
		UpsampleAfter: 0,
	}
	if _, err := NewPlan(18, 18, stridedAndDilated, 1); !errors.Is(err, ErrInvalidLayerTable) {
		t.Errorf("a strided and dilated layer cannot be built, expected ErrInvalidLayerTable, got %v", err)
	}

	if _, err := NewPlan(0, 16, DefaultLayerTable(), 1); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape for empty input, got %v", err)
	}
	if _, err := NewPlan(16, 16, DefaultLayerTable(), 0); !errors.Is(err, ErrInvalidLayerTable) {
		t.Errorf("expected ErrInvalidLayerTable for width 0, got %v", err)
	}
}
