package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 30), B: uint8(x + y), A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFlipPNGMirrorsPixels(t *testing.T) {
	src := gradient(5, 3)
	flipped, err := FlipHorizontal(encodePNG(t, src))
	require.NoError(t, err)

	out, err := png.Decode(bytes.NewReader(flipped))
	require.NoError(t, err)
	require.Equal(t, src.Bounds(), out.Bounds())

	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			want := color.NRGBAModel.Convert(src.At(4-x, y))
			got := color.NRGBAModel.Convert(out.At(x, y))
			assert.Equal(t, want, got, "pixel %d,%d", x, y)
		}
	}
}

func TestFlipPNGTwiceIsIdentity(t *testing.T) {
	src := gradient(7, 4)
	once, err := FlipHorizontal(encodePNG(t, src))
	require.NoError(t, err)
	twice, err := FlipHorizontal(once)
	require.NoError(t, err)

	out, err := png.Decode(bytes.NewReader(twice))
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 7; x++ {
			assert.Equal(t, color.NRGBAModel.Convert(src.At(x, y)), color.NRGBAModel.Convert(out.At(x, y)))
		}
	}
}

func TestFlipJPEGPreservesDimensions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, gradient(33, 17), &jpeg.Options{Quality: 90}))

	once, err := FlipHorizontal(buf.Bytes())
	require.NoError(t, err)
	twice, err := FlipHorizontal(once)
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(twice))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 33, cfg.Width)
	assert.Equal(t, 17, cfg.Height)
}

func TestFlipGIFKeepsPalette(t *testing.T) {
	palette := color.Palette{color.Black, color.White}
	frame := image.NewPaletted(image.Rect(0, 0, 4, 1), palette)
	frame.SetColorIndex(0, 0, 1)

	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, &gif.GIF{Image: []*image.Paletted{frame}, Delay: []int{0}}))

	flipped, err := FlipHorizontal(buf.Bytes())
	require.NoError(t, err)

	anim, err := gif.DecodeAll(bytes.NewReader(flipped))
	require.NoError(t, err)
	require.Len(t, anim.Image, 1)
	assert.Equal(t, uint8(0), anim.Image[0].ColorIndexAt(0, 0))
	assert.Equal(t, uint8(1), anim.Image[0].ColorIndexAt(3, 0))
}

func TestFlipRejectsUnknownData(t *testing.T) {
	_, err := FlipHorizontal([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrTransformFailed)
}

func TestFlipRejectsCorruptJPEG(t *testing.T) {
	// valid SOI marker so the sniffer says jpeg, then garbage
	_, err := FlipHorizontal(append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x01}, 64)...))
	assert.ErrorIs(t, err, ErrTransformFailed)
}

func TestMirrorFallbackKeepsBounds(t *testing.T) {
	src := image.NewCMYK(image.Rect(2, 3, 6, 5))
	src.Set(2, 3, color.CMYK{C: 255})

	out := Mirror(src)
	assert.Equal(t, src.Bounds(), out.Bounds())
	r, _, _, _ := out.At(5, 3).RGBA()
	assert.Equal(t, uint32(0), r)
}
