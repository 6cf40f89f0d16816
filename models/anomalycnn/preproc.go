package anomalycnn

import (
	"github.com/gomlx/exceptions"
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/types/tensors/images"
	"github.com/gomlx/gopjrt/dtypes"
)

// PreprocessImage makes the image in a format usable by the model.
//
// It performs 3 tasks:
//   - It scales the image values from -1.0 to 1.0 for int dtypes (assumed 0 to 255).
//     For float dtypes, it assumes the values are already in that range.
//   - It converts the image to grayscale: the alpha channel, if given, is removed and
//     the remaining channels are averaged.
//   - It resizes the image to height x width, if needed.
//
// Input `image` must have a batch dimension (rank=4), with channels last.
func PreprocessImage(image *Node, height, width int) *Node {
	if image.Rank() != 4 {
		exceptions.Panicf("anomalycnn.PreprocessImage requires image to be rank-4, got rank-%d instead", image.Rank())
	}

	// Scale image values to -1.0 to 1.0.
	if image.DType().IsInt() {
		image = ConvertDType(image, dtypes.F32)
		image = AddScalar(MulScalar(image, 2.0/255.0), -1.0)
	}

	// Remove alpha-channel, if given, and average the colors.
	channelsAxis := images.GetChannelsAxis(image, ChannelAxisConfig)
	numChannels := image.Shape().Dimensions[channelsAxis]
	if numChannels == 4 || numChannels == 2 {
		image = sliceAxis(image, channelsAxis, 0, numChannels-1)
		numChannels--
	}
	if numChannels > 1 {
		dims := image.Shape().Clone().Dimensions
		dims[channelsAxis] = 1
		image = Reshape(ReduceMean(image, channelsAxis), dims...)
	}

	// Resize the spatial dimensions.
	dims := image.Shape().Clone().Dimensions
	spatialAxes := images.GetSpatialAxes(image, ChannelAxisConfig)
	if dims[spatialAxes[0]] != height || dims[spatialAxes[1]] != width {
		dims[spatialAxes[0]] = height
		dims[spatialAxes[1]] = width
		image = Interpolate(image, dims...).Done()
	}
	return image
}
