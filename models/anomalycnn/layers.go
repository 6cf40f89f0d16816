/*
 *	Copyright 2025 Rener Castro
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package anomalycnn

import (
	"errors"
	"fmt"
)

// ErrInvalidLayerTable is returned (wrapped) for any malformed layer table.
var ErrInvalidLayerTable = errors.New("invalid layer table")

// ConvLayer holds the hyperparameters of one convolution block.
type ConvLayer struct {
	KernelSize   int `json:"kernel_size"`
	DilationRate int `json:"dilation_rate"`
	Strides      int `json:"strides"`
	Filters      int `json:"filters"`
}

// LayerTable is the ordered list of convolution blocks of the model.
//
// UpsampleAfter is the index of the layer after which the image is upsampled
// by 2 (nearest neighbour). Use -1 for no upsampling.
type LayerTable struct {
	Layers        []ConvLayer `json:"layers"`
	UpsampleAfter int         `json:"upsample_after"`
}

// DefaultLayerTable returns the layers published in
// https://arxiv.org/pdf/1811.06861.pdf.
func DefaultLayerTable() LayerTable {
	return LayerTable{
		Layers: []ConvLayer{
			{KernelSize: 5, DilationRate: 1, Strides: 1, Filters: 32},
			{KernelSize: 3, DilationRate: 1, Strides: 1, Filters: 64},
			{KernelSize: 3, DilationRate: 1, Strides: 1, Filters: 64},
			{KernelSize: 3, DilationRate: 1, Strides: 2, Filters: 128},
			{KernelSize: 3, DilationRate: 1, Strides: 1, Filters: 128},
			{KernelSize: 3, DilationRate: 1, Strides: 1, Filters: 128},
			{KernelSize: 3, DilationRate: 2, Strides: 1, Filters: 128},
			{KernelSize: 3, DilationRate: 4, Strides: 1, Filters: 128},
			{KernelSize: 3, DilationRate: 8, Strides: 1, Filters: 128},
			{KernelSize: 3, DilationRate: 16, Strides: 1, Filters: 128},
			{KernelSize: 3, DilationRate: 1, Strides: 1, Filters: 128},
			{KernelSize: 3, DilationRate: 1, Strides: 1, Filters: 128},
			{KernelSize: 3, DilationRate: 1, Strides: 1, Filters: 64},
			{KernelSize: 3, DilationRate: 1, Strides: 1, Filters: 64},
			{KernelSize: 3, DilationRate: 1, Strides: 1, Filters: 32},
			{KernelSize: 3, DilationRate: 1, Strides: 1, Filters: 16},
			{KernelSize: 3, DilationRate: 1, Strides: 1, Filters: 1},
		},
		UpsampleAfter: DefaultUpsampleAfter,
	}
}

// Validate checks that every layer has positive hyperparameters, that no layer
// is both strided and dilated (convolutions support only one at a time), and
// that UpsampleAfter points to an existing layer (or is -1).
func (t LayerTable) Validate() error {
	if len(t.Layers) == 0 {
		return fmt.Errorf("%w: no layers", ErrInvalidLayerTable)
	}
	for i, l := range t.Layers {
		if l.KernelSize < 1 || l.DilationRate < 1 || l.Strides < 1 || l.Filters < 1 {
			return fmt.Errorf("%w: layer %d has non-positive values %+v", ErrInvalidLayerTable, i, l)
		}
		if l.Strides > 1 && l.DilationRate > 1 {
			return fmt.Errorf("%w: layer %d sets both strides (%d) and dilation rate (%d)",
				ErrInvalidLayerTable, i, l.Strides, l.DilationRate)
		}
	}
	if t.UpsampleAfter < -1 || t.UpsampleAfter >= len(t.Layers) {
		return fmt.Errorf("%w: upsample_after=%d out of range for %d layers",
			ErrInvalidLayerTable, t.UpsampleAfter, len(t.Layers))
	}
	return nil
}

// Filters returns the number of output channels of layer i for the given
// width multiplier. The last layer always keeps its own filter count, so the
// reconstruction has a single channel.
func (t LayerTable) Filters(i, width int) int {
	if i == len(t.Layers)-1 {
		return t.Layers[i].Filters
	}
	return t.Layers[i].Filters * width
}
