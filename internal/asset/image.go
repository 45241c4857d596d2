package asset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// ErrNotImage is returned when a payload is not a decodable image.
var ErrNotImage = errors.New("asset: not an image")

// Decode decodes an image payload of the given format into NRGBA.
//
// Formats are decoded explicitly rather than through image.Decode: the TGA
// decoder registers without a magic number and would claim every input.
func Decode(data []byte, f Format) (*image.NRGBA, error) {
	var decode func(io.Reader) (image.Image, error)
	switch f {
	case JPEG:
		decode = jpeg.Decode
	case PNG:
		decode = png.Decode
	case BMP:
		decode = bmp.Decode
	case TGA:
		decode = tga.Decode
	case WebP:
		decode = webp.Decode
	default:
		return nil, fmt.Errorf("%w: %q", ErrNotImage, f)
	}

	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("asset: decode %s: %w", f, err)
	}
	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA format.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Fit scales img down so neither side exceeds maxSize, keeping its aspect
// ratio. Images already within bounds, or maxSize <= 0, are returned as is.
func Fit(img *image.NRGBA, maxSize int) *image.NRGBA {
	b := img.Bounds()
	if maxSize <= 0 || (b.Dx() <= maxSize && b.Dy() <= maxSize) {
		return img
	}

	w, h := maxSize, maxSize
	if b.Dx() >= b.Dy() {
		h = max(1, b.Dy()*maxSize/b.Dx())
	} else {
		w = max(1, b.Dx()*maxSize/b.Dy())
	}

	// Scale in premultiplied space so transparent edges do not darken.
	premul := image.NewRGBA(b)
	draw.Draw(premul, b, img, b.Min, draw.Src)
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), premul, b, draw.Src, nil)

	dst := image.NewNRGBA(scaled.Bounds())
	draw.Draw(dst, dst.Bounds(), scaled, image.Point{}, draw.Src)
	return dst
}

// EncodeWebP writes img as lossless WebP.
func EncodeWebP(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("asset: webp encode: %w", err)
	}
	return nil
}

// Export decodes an image payload, fits it within maxSize and writes it to w
// as WebP. It returns the detected format, or ErrNotImage for other payloads.
func Export(w io.Writer, data []byte, name string, maxSize int) (Format, error) {
	f := Detect(data, name)
	if !f.IsImage() {
		return f, fmt.Errorf("%w: %s", ErrNotImage, name)
	}

	img, err := Decode(data, f)
	if err != nil {
		return f, err
	}
	return f, EncodeWebP(w, Fit(img, maxSize))
}
