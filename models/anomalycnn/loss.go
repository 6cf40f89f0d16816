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
	"github.com/gomlx/exceptions"
	. "github.com/gomlx/gomlx/graph"
)

// DefaultCenterWeight is the weight of the masked (center) term of the loss.
const DefaultCenterWeight = 0.9

// LossFn follows the gomlx loss signature: it takes the labels and the model
// predictions and returns a scalar loss.
type LossFn func(labels, predictions []*Node) *Node

// L1MatrixNorms returns the induced L1 norm (maximum absolute column sum) of
// each [height, width] image of x ([batch, height, width, channels]),
// averaged over the channels. The result is shaped [batch].
func L1MatrixNorms(x *Node) *Node {
	x.AssertRank(4)
	columnSums := ReduceSum(Abs(x), 1) // [batch, width, channels]
	norms := ReduceMax(columnSums, 1)  // [batch, channels]
	return ReduceMean(norms, 1)
}

// L1MatrixNorm is L1MatrixNorms averaged over the batch.
func L1MatrixNorm(x *Node) *Node {
	return ReduceAllMean(L1MatrixNorms(x))
}

// ReconstructionLossConfig configures the loss; create it with
// NewReconstructionLoss.
type ReconstructionLossConfig struct {
	height, width int
	mask          *Mask
	centerH       int
	centerW       int
	centerWeight  float64
}

// NewReconstructionLoss configures the masked reconstruction loss for images
// of height x width. Either Mask or CenterSize must be set before Done.
func NewReconstructionLoss(height, width int) *ReconstructionLossConfig {
	return &ReconstructionLossConfig{
		height:       height,
		width:        width,
		centerWeight: DefaultCenterWeight,
	}
}

// Mask sets an explicit mask. It takes precedence over CenterSize.
func (c *ReconstructionLossConfig) Mask(mask Mask) *ReconstructionLossConfig {
	c.mask = &mask
	return c
}

// CenterSize uses a CenterMask of the given size.
func (c *ReconstructionLossConfig) CenterSize(height, width int) *ReconstructionLossConfig {
	c.centerH, c.centerW = height, width
	return c
}

// CenterWeight sets the weight of the masked term; the inverse-masked term is
// weighted 1-weight. Default is DefaultCenterWeight.
func (c *ReconstructionLossConfig) CenterWeight(weight float64) *ReconstructionLossConfig {
	c.centerWeight = weight
	return c
}

// Done returns the loss function:
//
//	(w*‖M⊙(y-ŷ)‖ + (1-w)*‖(1-M)⊙(y-ŷ)‖) / (height*width)
//
// where ‖·‖ is L1MatrixNorm and M the mask.
func (c *ReconstructionLossConfig) Done() LossFn {
	scores := c.ScoresFn()
	return func(labels, predictions []*Node) *Node {
		return ReduceAllMean(scores(labels[0], predictions[0]))
	}
}

// ScoresFn returns a function computing the loss of each example separately,
// shaped [batch]. Used as the anomaly score of each image.
func (c *ReconstructionLossConfig) ScoresFn() func(truth, pred *Node) *Node {
	mask := c.buildMask()
	weight := c.centerWeight
	spatialSize := float64(c.height * c.width)
	maskTensor := mask.Tensor()

	return func(truth, pred *Node) *Node {
		if truth.Rank() == 3 {
			dims := truth.Shape().Dimensions
			truth = Reshape(truth, dims[0], dims[1], dims[2], 1)
		}
		if pred.Rank() == 3 {
			dims := pred.Shape().Dimensions
			pred = Reshape(pred, dims[0], dims[1], dims[2], 1)
		}
		truth = ConvertDType(truth, pred.DType())
		diff := Sub(truth, pred)
		diff.AssertDims(diff.Shape().Dimensions[0], c.height, c.width, 1)
		g := pred.Graph()
		m := ConvertDType(ConstTensor(g, maskTensor), pred.DType())
		m = BroadcastToDims(m, diff.Shape().Dimensions...)
		mInv := OneMinus(m)
		center := L1MatrixNorms(Mul(m, diff))
		border := L1MatrixNorms(Mul(mInv, diff))
		loss := Add(MulScalar(center, weight), MulScalar(border, 1-weight))
		return DivScalar(loss, spatialSize)
	}
}

func (c *ReconstructionLossConfig) buildMask() Mask {
	switch {
	case c.mask != nil:
		if c.mask.Height != c.height || c.mask.Width != c.width {
			exceptions.Panicf("anomalycnn.ReconstructionLoss: mask is %dx%d, images are %dx%d",
				c.mask.Height, c.mask.Width, c.height, c.width)
		}
		return *c.mask
	case c.centerH > 0 || c.centerW > 0:
		mask, err := CenterMask(c.height, c.width, c.centerH, c.centerW)
		if err != nil {
			exceptions.Panicf("anomalycnn.ReconstructionLoss: %v", err)
		}
		return mask
	}
	exceptions.Panicf("anomalycnn.ReconstructionLoss: you have to either specify the mask or the center size")
	return Mask{}
}
