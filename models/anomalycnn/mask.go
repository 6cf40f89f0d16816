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

	"github.com/gomlx/gomlx/types/tensors"
)

var (
	ErrInvalidShape      = errors.New("invalid shape")
	ErrInvalidCenterSize = errors.New("invalid center size")
)

// Mask is a [Height, Width] image of 0s and 1s, stored row-major.
type Mask struct {
	Height, Width int
	Data          []float32
}

// CenterMask returns a mask of height x width with a centerHeight x
// centerWidth rectangle of ones starting at
// (height/2 - centerHeight/2, width/2 - centerWidth/2).
func CenterMask(height, width, centerHeight, centerWidth int) (Mask, error) {
	if height < 1 || width < 1 {
		return Mask{}, fmt.Errorf("%w: mask %dx%d", ErrInvalidShape, height, width)
	}
	if centerHeight < 1 || centerWidth < 1 || centerHeight > height || centerWidth > width {
		return Mask{}, fmt.Errorf("%w: %dx%d for image %dx%d",
			ErrInvalidCenterSize, centerHeight, centerWidth, height, width)
	}
	m := Mask{Height: height, Width: width, Data: make([]float32, height*width)}
	yStart := height/2 - centerHeight/2
	xStart := width/2 - centerWidth/2
	for y := yStart; y < yStart+centerHeight; y++ {
		row := m.Data[y*width : (y+1)*width]
		for x := xStart; x < xStart+centerWidth; x++ {
			row[x] = 1
		}
	}
	return m, nil
}

// At returns the mask value at row y, column x.
func (m Mask) At(y, x int) float32 {
	return m.Data[y*m.Width+x]
}

// Inverse returns 1 - m.
func (m Mask) Inverse() Mask {
	inv := Mask{Height: m.Height, Width: m.Width, Data: make([]float32, len(m.Data))}
	for i, v := range m.Data {
		inv.Data[i] = 1 - v
	}
	return inv
}

// Ones counts the non-zero entries.
func (m Mask) Ones() int {
	count := 0
	for _, v := range m.Data {
		if v != 0 {
			count++
		}
	}
	return count
}

// Tensor returns the mask as a float32 tensor shaped [1, Height, Width, 1],
// ready to be broadcast against a batch of single channel images.
func (m Mask) Tensor() *tensors.Tensor {
	data := make([]float32, len(m.Data))
	copy(data, m.Data)
	return tensors.FromFlatDataAndDimensions(data, 1, m.Height, m.Width, 1)
}
