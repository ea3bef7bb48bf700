package vision

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoder

	xdraw "golang.org/x/image/draw"

	"github.com/SuyashBhavalkar3/posturecoach/errors"
)

// jpegQuality is used for all re-encoded frames sent back to clients.
const jpegQuality = 80

// Decode converts transport bytes into a decoded frame. JPEG and PNG are
// accepted.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.WrapInvalid(errors.ErrFrameDecode, "vision", "Decode", "empty payload")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapInvalid(err, "vision", "Decode", "decode image")
	}
	return img, nil
}

// EncodeJPEG re-encodes a frame for transport.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, errors.WrapInvalid(err, "vision", "EncodeJPEG", "encode image")
	}
	return buf.Bytes(), nil
}

// Downscale returns img scaled so its width does not exceed maxWidth,
// preserving aspect ratio. The original image is returned unchanged when
// it is already narrow enough or when maxWidth is zero or negative;
// Downscale never upscales.
func Downscale(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	if maxWidth <= 0 || width <= maxWidth {
		return img
	}

	height := bounds.Dy() * maxWidth / width
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}
