package anomalycnn

import (
	"errors"
	"testing"
)

func TestDefaultLayerTable(t *testing.T) {
	table := DefaultLayerTable()
	if err := table.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(table.Layers) != 17 {
		t.Fatalf("expected 17 layers but got %d", len(table.Layers))
	}
	dilations := []int{}
	for _, l := range table.Layers {
		if l.DilationRate > 1 {
			dilations = append(dilations, l.DilationRate)
		}
	}
	if len(dilations) != 4 || dilations[0] != 2 || dilations[3] != 16 {
		t.Errorf("unexpected dilated layers: %v", dilations)
	}
	if table.Layers[3].Strides != 2 {
		t.Errorf("layer 3 should downsample, got stride %d", table.Layers[3].Strides)
	}
	if last := table.Layers[len(table.Layers)-1]; last.Filters != 1 {
		t.Errorf("last layer should have 1 filter, got %d", last.Filters)
	}
}

func TestLayerTableFilters(t *testing.T) {
	table := DefaultLayerTable()
	if got := table.Filters(0, 2); got != 64 {
		t.Errorf("first layer with width 2: expected 64 filters, got %d", got)
	}
	if got := table.Filters(len(table.Layers)-1, 4); got != 1 {
		t.Errorf("last layer must ignore the width multiplier, got %d", got)
	}
}

func TestLayerTableValidateErrors(t *testing.T) {
	invalid := []LayerTable{
		{UpsampleAfter: -1},
		{Layers: []ConvLayer{{KernelSize: 0, DilationRate: 1, Strides: 1, Filters: 1}}, UpsampleAfter: -1},
		{Layers: []ConvLayer{{KernelSize: 3, DilationRate: 0, Strides: 1, Filters: 1}}, UpsampleAfter: -1},
		{Layers: []ConvLayer{{KernelSize: 3, DilationRate: 1, Strides: 1, Filters: -2}}, UpsampleAfter: -1},
		{Layers: []ConvLayer{{KernelSize: 3, DilationRate: 2, Strides: 2, Filters: 1}}, UpsampleAfter: 0},
		{Layers: []ConvLayer{{KernelSize: 3, DilationRate: 1, Strides: 1, Filters: 1}}, UpsampleAfter: 1},
		{Layers: []ConvLayer{{KernelSize: 3, DilationRate: 1, Strides: 1, Filters: 1}}, UpsampleAfter: -2},
	}
	for i, table := range invalid {
		if err := table.Validate(); !errors.Is(err, ErrInvalidLayerTable) {
			t.Errorf("table %d: expected ErrInvalidLayerTable, got %v", i, err)
		}
	}
}
