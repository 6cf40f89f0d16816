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
	"github.com/gomlx/gomlx/types/tensors/images"
)

// ReflectPad pads the spatial axes of image ([batch, height, width, channels])
// by mirroring the values next to the border, excluding the border itself.
// padH and padW are the paddings on each side and must be smaller than the
// corresponding dimension.
func ReflectPad(image *Node, padH, padW int) *Node {
	image.AssertRank(4)
	spatialAxes := images.GetSpatialAxes(image, ChannelAxisConfig)
	image = reflectPadAxis(image, spatialAxes[0], padH)
	image = reflectPadAxis(image, spatialAxes[1], padW)
	return image
}

func reflectPadAxis(x *Node, axis, pad int) *Node {
	if pad == 0 {
		return x
	}
	dim := x.Shape().Dimensions[axis]
	if pad < 0 || pad >= dim {
		exceptions.Panicf("anomalycnn.ReflectPad: padding %d invalid for axis %d of size %d", pad, axis, dim)
	}
	before := Reverse(sliceAxis(x, axis, 1, pad+1), axis)
	after := Reverse(sliceAxis(x, axis, dim-1-pad, dim-1), axis)
	return Concatenate([]*Node{before, x, after}, axis)
}

func sliceAxis(x *Node, axis, start, end int) *Node {
	axesRanges := make([]SliceAxisSpec, x.Rank())
	for ii := range axesRanges {
		if ii == axis {
			axesRanges[ii] = AxisRange(start, end)
		} else {
			axesRanges[ii] = AxisRange()
		}
	}
	return Slice(x, axesRanges...)
}
