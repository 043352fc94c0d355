package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestLetterbox_OutputMatchesTargetSize(t *testing.T) {
	src := solidImage(800, 600, color.RGBA{R: 255, A: 255})
	out := Letterbox(src, Resolution{Width: 1920, Height: 1080}, BackgroundBlack)

	assert.Equal(t, 1920, out.Bounds().Dx())
	assert.Equal(t, 1080, out.Bounds().Dy())
}

func TestLetterbox_IdempotentOnCorrectlySizedImage(t *testing.T) {
	src := solidImage(320, 180, color.RGBA{R: 10, G: 200, B: 30, A: 255})
	out := Letterbox(src, Resolution{Width: 320, Height: 180}, BackgroundBlack)

	require.Equal(t, src.Bounds(), out.Bounds())
	assert.Equal(t, src.Pix, out.Pix)
}

func TestLetterbox_TallerSourceFillsHeight(t *testing.T) {
	// 600x600 into 1920x1080: height dominates, so the scaled image fills
	// the vertical axis exactly and is centered horizontally.
	src := solidImage(600, 600, color.RGBA{B: 255, A: 255})
	out := Letterbox(src, Resolution{Width: 1920, Height: 1080}, BackgroundBlack)

	// Center column is source blue, top edge row included.
	assert.Equal(t, color.RGBA{B: 255, A: 255}, out.RGBAAt(960, 0))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, out.RGBAAt(960, 1079))
	// Far left is background.
	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(0, 540))
}

func TestLetterbox_WiderSourceFillsWidth(t *testing.T) {
	// 4000x1000 into 1920x1080: width dominates.
	src := solidImage(4000, 1000, color.RGBA{R: 255, A: 255})
	out := Letterbox(src, Resolution{Width: 1920, Height: 1080}, BackgroundBlack)

	assert.Equal(t, color.RGBA{R: 255, A: 255}, out.RGBAAt(0, 540))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, out.RGBAAt(1919, 540))
	// Above the scaled band is background.
	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(960, 0))
}

func TestLetterbox_Deterministic(t *testing.T) {
	src := solidImage(640, 480, color.RGBA{R: 120, G: 30, B: 77, A: 255})
	res := Resolution{Width: 1920, Height: 1080}

	first := Letterbox(src, res, BackgroundEdgeMean)
	second := Letterbox(src, res, BackgroundEdgeMean)
	assert.Equal(t, first.Pix, second.Pix)
}

func TestLetterbox_EdgeMeanBackground(t *testing.T) {
	// Uniform source: the edge mean equals the source color.
	src := solidImage(600, 600, color.RGBA{R: 40, G: 80, B: 120, A: 255})
	out := Letterbox(src, Resolution{Width: 1920, Height: 1080}, BackgroundEdgeMean)

	assert.Equal(t, color.RGBA{R: 40, G: 80, B: 120, A: 255}, out.RGBAAt(0, 540))
}

func TestParseBackgroundMode(t *testing.T) {
	mode, err := ParseBackgroundMode("")
	require.NoError(t, err)
	assert.Equal(t, BackgroundBlack, mode)

	mode, err = ParseBackgroundMode("edge_mean")
	require.NoError(t, err)
	assert.Equal(t, BackgroundEdgeMean, mode)

	_, err = ParseBackgroundMode("plaid")
	assert.Error(t, err)
}
