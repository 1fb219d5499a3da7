// Package imaging mirrors downloaded artwork while keeping its encoded format.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// JPEGQuality is used when re-encoding flipped JPEGs
const JPEGQuality = 60

// ErrTransformFailed wraps every reason a flip could not be produced
var ErrTransformFailed = errors.New("transform failed")

// FlipHorizontal mirrors an encoded image across its vertical axis and
// re-encodes it in the same format. JPEG is re-encoded at JPEGQuality;
// PNG, GIF (every frame), BMP and TIFF are re-encoded losslessly.
func FlipHorizontal(data []byte) ([]byte, error) {
	mime := mimetype.Detect(data).String()

	var (
		buf bytes.Buffer
		err error
	)
	switch mime {
	case "image/jpeg":
		err = flipWith(data, jpeg.Decode, func(img image.Image) error {
			return jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
		})
	case "image/png":
		err = flipWith(data, png.Decode, func(img image.Image) error {
			return png.Encode(&buf, img)
		})
	case "image/bmp":
		err = flipWith(data, bmp.Decode, func(img image.Image) error {
			return bmp.Encode(&buf, img)
		})
	case "image/tiff":
		err = flipWith(data, tiff.Decode, func(img image.Image) error {
			return tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
		})
	case "image/gif":
		err = flipGIF(data, &buf)
	default:
		return nil, fmt.Errorf("%w: unsupported format %s", ErrTransformFailed, mime)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTransformFailed, mime, err)
	}

	return buf.Bytes(), nil
}

func flipWith(data []byte, decode func(io.Reader) (image.Image, error), encode func(image.Image) error) error {
	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := encode(Mirror(img)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func flipGIF(data []byte, buf *bytes.Buffer) error {
	anim, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	width := anim.Config.Width
	for i, frame := range anim.Image {
		anim.Image[i] = mirrorFrame(frame, width)
	}
	if err := gif.EncodeAll(buf, anim); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Mirror returns a horizontally flipped copy with identical bounds. Pixel
// layouts that can be reversed in place keep their concrete type (so palette
// and bit depth survive); anything else is converted to RGBA64.
func Mirror(src image.Image) image.Image {
	switch s := src.(type) {
	case *image.NRGBA:
		dst := *s
		dst.Pix = mirrorPix(s.Pix, s.Stride, s.Rect, 4)
		return &dst
	case *image.RGBA:
		dst := *s
		dst.Pix = mirrorPix(s.Pix, s.Stride, s.Rect, 4)
		return &dst
	case *image.NRGBA64:
		dst := *s
		dst.Pix = mirrorPix(s.Pix, s.Stride, s.Rect, 8)
		return &dst
	case *image.RGBA64:
		dst := *s
		dst.Pix = mirrorPix(s.Pix, s.Stride, s.Rect, 8)
		return &dst
	case *image.Gray:
		dst := *s
		dst.Pix = mirrorPix(s.Pix, s.Stride, s.Rect, 1)
		return &dst
	case *image.Gray16:
		dst := *s
		dst.Pix = mirrorPix(s.Pix, s.Stride, s.Rect, 2)
		return &dst
	case *image.Paletted:
		dst := *s
		dst.Pix = mirrorPix(s.Pix, s.Stride, s.Rect, 1)
		return &dst
	}

	b := src.Bounds()
	dst := image.NewRGBA64(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(b.Max.X-1-(x-b.Min.X), y, src.At(x, y))
		}
	}
	return dst
}

// mirrorFrame flips a GIF frame relative to the logical screen width so
// frames with an offset land in the mirrored position.
func mirrorFrame(frame *image.Paletted, screenWidth int) *image.Paletted {
	flipped := Mirror(frame).(*image.Paletted)
	if screenWidth <= 0 {
		return flipped
	}
	b := frame.Bounds()
	flipped.Rect = b.Add(image.Pt(screenWidth-b.Max.X-b.Min.X, 0))
	return flipped
}

func mirrorPix(pix []byte, stride int, rect image.Rectangle, bpp int) []byte {
	out := make([]byte, len(pix))
	copy(out, pix)

	width := rect.Dx()
	for y := 0; y < rect.Dy(); y++ {
		row := out[y*stride : y*stride+width*bpp]
		for l, r := 0, width-1; l < r; l, r = l+1, r-1 {
			for k := 0; k < bpp; k++ {
				row[l*bpp+k], row[r*bpp+k] = row[r*bpp+k], row[l*bpp+k]
			}
		}
	}
	return out
}
