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

	"gonum.org/v1/gonum/mat"
)

// This file computes the reconstruction loss on the host, on a single image,
// so it can be used as an anomaly score without building a graph.

// MatrixL1Norm is the host version of L1MatrixNorm for one row-major
// height x width image.
func MatrixL1Norm(values []float32, height, width int) float64 {
	data := make([]float64, len(values))
	for i, v := range values {
		data[i] = float64(v)
	}
	return mat.Norm(mat.NewDense(height, width, data), 1)
}

// ReconstructionScore is the masked reconstruction loss of one single
// channel image: truth and pred are row-major and shaped like mask.
func ReconstructionScore(truth, pred []float32, mask Mask, centerWeight float64) (float64, error) {
	size := mask.Height * mask.Width
	if len(truth) != size || len(pred) != size {
		return 0, fmt.Errorf("%w: got %d and %d values for a %dx%d mask",
			ErrInvalidShape, len(truth), len(pred), mask.Height, mask.Width)
	}
	center := mat.NewDense(mask.Height, mask.Width, nil)
	border := mat.NewDense(mask.Height, mask.Width, nil)
	for i := range truth {
		diff := float64(truth[i] - pred[i])
		m := float64(mask.Data[i])
		center.Set(i/mask.Width, i%mask.Width, m*diff)
		border.Set(i/mask.Width, i%mask.Width, (1-m)*diff)
	}
	loss := centerWeight*mat.Norm(center, 1) + (1-centerWeight)*mat.Norm(border, 1)
	return loss / float64(size), nil
}
