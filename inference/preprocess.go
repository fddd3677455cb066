package inference

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// prepareInput fills dst with the model's expected CHW float32 layout:
// three channel planes of width*height normalized [0,1] values. The image
// is resized to the input shape with Lanczos3 resampling.
func prepareInput(img image.Image, shape image.Point, dst []float32) error {
	channelSize := shape.X * shape.Y
	if len(dst) < channelSize*3 {
		return errors.Errorf(
			"input tensor only holds %d floats, needs %d (make sure it's the right shape)",
			len(dst), channelSize*3)
	}
	red := dst[0:channelSize]
	green := dst[channelSize : channelSize*2]
	blue := dst[channelSize*2 : channelSize*3]

	resized := resize.Resize(uint(shape.X), uint(shape.Y), img, resize.Lanczos3)

	i := 0
	for y := 0; y < shape.Y; y++ {
		for x := 0; x < shape.X; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(b>>8) / 255.0
			i++
		}
	}
	return nil
}
