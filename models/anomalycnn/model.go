/*
Package anomalycnn provides the convolutional network used for anomaly
detection by image completion, and its masked reconstruction loss.

The model reconstructs a single channel image with a stack of reflect padded,
dilated convolutions (ELU activated), one 2x upsampling in the middle, and a
final reflect padding and clipping to [-1, 1].

Reference:
- Anomaly Detection using Deep Learning based Image Completion, https://arxiv.org/pdf/1811.06861.pdf (ICMLA 2018)
*/
package anomalycnn

import (
	"github.com/gomlx/exceptions"
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/layers"
	"github.com/gomlx/gomlx/types/tensors/images"
)

const (
	BuildScope = "AnomalyCNN"

	// DefaultImageSize is the height and width of the images used in the paper.
	DefaultImageSize = 128

	// DefaultUpsampleAfter is the index of the layer followed by the 2x upsampling.
	DefaultUpsampleAfter = 11

	ChannelAxisConfig = images.ChannelsLast

	// ParamWidth is the context hyperparameter with the width multiplier
	// applied to the number of filters of all but the last layer.
	ParamWidth = "anomaly_width"
)

// ModelGraph builds the reconstruction model, following the gomlx model
// function signature.
//
// spec may be nil (default layers), a LayerTable or a *LayerTable.
// inputs: only one tensor, with shape `[batch_size, height, width, 1]` or `[batch_size, height, width]`,
// with values in [-1, 1].
func ModelGraph(ctx *context.Context, spec any, inputs []*Node) []*Node {
	ctx = ctx.In(BuildScope)
	builder := New(ctx, inputs[0])
	switch table := spec.(type) {
	case nil:
	case LayerTable:
		builder.Layers(table)
	case *LayerTable:
		builder.Layers(*table)
	default:
		exceptions.Panicf("anomalycnn.ModelGraph: unsupported spec type %T", spec)
	}
	return []*Node{builder.Done()}
}

// Config holds the configuration of the model being built.
// Create it with New, configure it and call Done to build the graph.
type Config struct {
	ctx    *context.Context
	images *Node
	table  LayerTable
	width  int
}

// New starts the configuration of the model over images.
// The width multiplier defaults to the ParamWidth hyperparameter, or 1.
func New(ctx *context.Context, images *Node) *Config {
	return &Config{
		ctx:    ctx,
		images: images,
		table:  DefaultLayerTable(),
		width:  context.GetParamOr(ctx, ParamWidth, 1),
	}
}

// Layers replaces the default layer table.
func (c *Config) Layers(table LayerTable) *Config {
	c.table = table
	return c
}

// Width sets the filters multiplier. The last layer is not affected.
func (c *Config) Width(width int) *Config {
	c.width = width
	return c
}

// Done builds the graph and returns the reconstructed images, shaped
// `[batch_size, height, width, 1]`.
func (c *Config) Done() *Node {
	image := c.images
	if !image.DType().IsFloat() {
		exceptions.Panicf("anomalycnn: images must be float, got %s -- see PreprocessImage", image.DType())
	}
	switch image.Rank() {
	case 3:
		dims := image.Shape().Dimensions
		image = Reshape(image, dims[0], dims[1], dims[2], 1)
	case 4:
		if channels := image.Shape().Dimensions[3]; channels != 1 {
			exceptions.Panicf("anomalycnn: images must only have one channel (grayscale), got %d channels", channels)
		}
	default:
		exceptions.Panicf("anomalycnn: images must be rank-3 or rank-4, got rank-%d", image.Rank())
	}
	batchSize := image.Shape().Dimensions[0]
	plan, err := NewPlan(image.Shape().Dimensions[1], image.Shape().Dimensions[2], c.table, c.width)
	if err != nil {
		exceptions.Panicf("anomalycnn: %v", err)
	}

	layerIdx := 0
	nextCtx := func(name string) *context.Context {
		newCtx := c.ctx.Inf("%03d_%s", layerIdx, name)
		layerIdx++
		return newCtx
	}

	for _, lp := range plan.Layers {
		image = ConvBlock(nextCtx("conv"), image, lp.Layer, lp.Out.Channels)
		if lp.Upsample {
			image = Upsample2x(image)
		}
		image.AssertDims(batchSize, lp.Out.Height, lp.Out.Width, lp.Out.Channels)
	}
	image = ReflectPad(image, plan.FinalPadH, plan.FinalPadW)
	image = ClipScalar(image, -1, 1)
	out := plan.Output()
	image.AssertDims(batchSize, out.Height, out.Width, 1)
	return image
}

// ConvBlock reflect pads image by the layer's dilation rate, applies a valid
// (dilated, strided) convolution with the given number of filters, and an ELU.
func ConvBlock(ctx *context.Context, image *Node, layer ConvLayer, filters int) *Node {
	image = ReflectPad(image, layer.DilationRate, layer.DilationRate)
	image = layers.Convolution(ctx, image).
		Filters(filters).
		KernelSize(layer.KernelSize).
		Strides(layer.Strides).
		Dilations(layer.DilationRate).
		Done()
	return Elu(image)
}

// Elu is the exponential linear unit: x for x > 0, exp(x)-1 otherwise.
func Elu(x *Node) *Node {
	zeros := ZerosLike(x)
	return Where(GreaterThan(x, zeros), x, Expm1(Min(x, zeros)))
}

// Upsample2x doubles the spatial size of image ([batch, height, width, channels])
// with nearest neighbour interpolation.
func Upsample2x(image *Node) *Node {
	image.AssertRank(4)
	dims := image.Shape().Dimensions
	return Interpolate(image, dims[0], 2*dims[1], 2*dims[2], dims[3]).Nearest().Done()
}
