package imaging

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// BackgroundMode selects the fill color behind a letterboxed image.
type BackgroundMode string

const (
	// BackgroundBlack pads with solid black.
	BackgroundBlack BackgroundMode = "black"
	// BackgroundEdgeMean pads with the mean color of the source's one-pixel border.
	BackgroundEdgeMean BackgroundMode = "edge_mean"
)

// ParseBackgroundMode validates a background mode string, defaulting to black.
func ParseBackgroundMode(value string) (BackgroundMode, error) {
	switch BackgroundMode(value) {
	case "", BackgroundBlack:
		return BackgroundBlack, nil
	case BackgroundEdgeMean:
		return BackgroundEdgeMean, nil
	}
	return "", fmt.Errorf("unknown background mode %q", value)
}

// Letterbox scales src uniformly so it fits entirely inside the target
// resolution, then centers it on a solid canvas of exactly that size.
// The operation never crops and is deterministic for identical input and mode.
func Letterbox(src image.Image, res Resolution, mode BackgroundMode) *image.RGBA {
	targetW, targetH := res.Width, res.Height

	background := color.RGBA{A: 255}
	if mode == BackgroundEdgeMean {
		background = averageEdgeColor(src)
	}

	srcBounds := src.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()

	imageRatio := float64(srcW) / float64(srcH)
	targetRatio := float64(targetW) / float64(targetH)

	var newW, newH int
	if imageRatio > targetRatio {
		newW = targetW
		newH = int(float64(targetW) / imageRatio)
	} else {
		newH = targetH
		newW = int(float64(targetH) * imageRatio)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	offsetX := (targetW - newW) / 2
	offsetY := (targetH - newH) / 2
	dstRect := image.Rect(offsetX, offsetY, offsetX+newW, offsetY+newH)

	if newW == srcW && newH == srcH {
		// Already at the scaled size; copy pixels directly so an image that
		// matches the target passes through pixel-identical.
		draw.Draw(canvas, dstRect, src, srcBounds.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(canvas, dstRect, src, srcBounds, draw.Src, nil)
	}
	return canvas
}

// averageEdgeColor computes the per-channel mean of all border pixels,
// truncating to integers.
func averageEdgeColor(src image.Image) color.RGBA {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return color.RGBA{A: 255}
	}

	var sumR, sumG, sumB, count uint64
	sample := func(x, y int) {
		r, g, b, _ := src.At(x, y).RGBA()
		sumR += uint64(r >> 8)
		sumG += uint64(g >> 8)
		sumB += uint64(b >> 8)
		count++
	}

	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		sample(x, bounds.Min.Y)
		sample(x, bounds.Max.Y-1)
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		sample(bounds.Min.X, y)
		sample(bounds.Max.X-1, y)
	}

	return color.RGBA{
		R: uint8(sumR / count),
		G: uint8(sumG / count),
		B: uint8(sumB / count),
		A: 255,
	}
}
