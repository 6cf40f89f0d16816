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
	"fmt"
)

// Dims of one image: spatial size and channels.
type Dims struct {
	Height, Width, Channels int
}

// LayerPlan describes one convolution block once unrolled for a given input.
type LayerPlan struct {
	Index    int
	Layer    ConvLayer
	Padding  int
	In, Out  Dims
	Upsample bool // Out is already upsampled.
}

// Plan is the static unrolling of a LayerTable for an input size.
type Plan struct {
	Input  Dims
	Layers []LayerPlan

	// FinalPadH and FinalPadW are the reflect paddings (per side) that
	// bring the last layer's output back to the input size.
	FinalPadH, FinalPadW int
}

// Output returns the dimensions of the model output.
func (p *Plan) Output() Dims {
	last := p.Layers[len(p.Layers)-1].Out
	return Dims{Height: last.Height + 2*p.FinalPadH, Width: last.Width + 2*p.FinalPadW, Channels: last.Channels}
}

// convOutputSize is the size of a valid convolution over a dimension reflect
// padded by dilation on each side.
func convOutputSize(in int, l ConvLayer) int {
	padded := in + 2*l.DilationRate
	effectiveKernel := l.DilationRate*(l.KernelSize-1) + 1
	if padded < effectiveKernel {
		return 0
	}
	return (padded-effectiveKernel)/l.Strides + 1
}

// NewPlan unrolls table for an input of height x width (single channel) and
// the given width multiplier.
func NewPlan(height, width int, table LayerTable, widthMultiplier int) (*Plan, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if height < 1 || width < 1 {
		return nil, fmt.Errorf("%w: input %dx%d", ErrInvalidShape, height, width)
	}
	if widthMultiplier < 1 {
		return nil, fmt.Errorf("%w: width multiplier %d", ErrInvalidLayerTable, widthMultiplier)
	}
	plan := &Plan{Input: Dims{Height: height, Width: width, Channels: 1}}
	current := plan.Input
	for i, l := range table.Layers {
		if l.DilationRate >= current.Height || l.DilationRate >= current.Width {
			return nil, fmt.Errorf("%w: layer %d reflect padding %d does not fit %dx%d",
				ErrInvalidShape, i, l.DilationRate, current.Height, current.Width)
		}
		lp := LayerPlan{Index: i, Layer: l, Padding: l.DilationRate, In: current}
		lp.Out = Dims{
			Height:   convOutputSize(current.Height, l),
			Width:    convOutputSize(current.Width, l),
			Channels: table.Filters(i, widthMultiplier),
		}
		if lp.Out.Height < 1 || lp.Out.Width < 1 {
			return nil, fmt.Errorf("%w: layer %d collapses %dx%d", ErrInvalidShape, i, current.Height, current.Width)
		}
		if i == table.UpsampleAfter {
			lp.Upsample = true
			lp.Out.Height *= 2
			lp.Out.Width *= 2
		}
		plan.Layers = append(plan.Layers, lp)
		current = lp.Out
	}

	var err error
	if plan.FinalPadH, err = finalPadding(height, current.Height); err != nil {
		return nil, fmt.Errorf("height: %w", err)
	}
	if plan.FinalPadW, err = finalPadding(width, current.Width); err != nil {
		return nil, fmt.Errorf("width: %w", err)
	}
	return plan, nil
}

func finalPadding(input, output int) (int, error) {
	diff := input - output
	if diff < 0 || diff%2 != 0 {
		return 0, fmt.Errorf("%w: output size %d cannot be reflect padded back to %d", ErrInvalidShape, output, input)
	}
	pad := diff / 2
	if pad >= output {
		return 0, fmt.Errorf("%w: reflect padding %d does not fit output size %d", ErrInvalidShape, pad, output)
	}
	return pad, nil
}

// String formats the plan as one line per layer.
func (p *Plan) String() string {
	s := fmt.Sprintf("input %dx%dx%d\n", p.Input.Height, p.Input.Width, p.Input.Channels)
	for _, lp := range p.Layers {
		s += fmt.Sprintf("%03d conv k=%d d=%d s=%d pad=%d -> %dx%dx%d",
			lp.Index, lp.Layer.KernelSize, lp.Layer.DilationRate, lp.Layer.Strides, lp.Padding,
			lp.Out.Height, lp.Out.Width, lp.Out.Channels)
		if lp.Upsample {
			s += " (upsampled)"
		}
		s += "\n"
	}
	out := p.Output()
	s += fmt.Sprintf("output %dx%dx%d (final padding %d,%d)\n", out.Height, out.Width, out.Channels, p.FinalPadH, p.FinalPadW)
	return s
}
