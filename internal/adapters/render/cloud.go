// Package render rasterises the accepted deviation set as a scatter image
// around the target center.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/aimdrift/aimdrift/internal/domain/model"
)

const (
	imageSize = 800 // square canvas, px

	// Reference circle matching the nominal target size in source units.
	referenceRadius = 64.0

	markerArm    = 3 // half-length of the plus marker, px
	dashPeriod   = 8
	circleSteps  = 1440
	extentGrow   = 1.1
	minExtent    = referenceRadius * 1.5
	axisStep     = 3 // dotted axis pixel period
	maxColorByte = 255
)

var (
	background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	axisGray   = color.RGBA{R: 170, G: 170, B: 170, A: 255}
	circleGray = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

// WriteCloud renders the deviation vectors to a PNG at path. An empty vector
// set writes nothing and is not an error.
func WriteCloud(path string, vectors []model.DeviationVector) error {
	if len(vectors) == 0 {
		return nil
	}

	maxDist := 0.0
	for _, v := range vectors {
		if d := math.Hypot(v.DX, v.DY); d > maxDist {
			maxDist = d
		}
	}
	extent := math.Max(minExtent, maxDist) * extentGrow

	img := image.NewRGBA(image.Rect(0, 0, imageSize, imageSize))
	fill(img, background)
	drawAxes(img)
	drawReferenceCircle(img, extent)
	for _, v := range vectors {
		d := math.Hypot(v.DX, v.DY)
		px, py := project(v.DX, v.DY, extent)
		drawMarker(img, px, py, heat(d, maxDist))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cloud image: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode cloud image: %w", err)
	}
	return nil
}

// project maps a deviation onto the canvas with the origin at the center.
// Source +DY and screen y both point downward, so "up is up" holds without
// an explicit flip.
func project(dx, dy, extent float64) (int, int) {
	half := float64(imageSize) / 2
	x := half + dx/extent*half
	y := half + dy/extent*half
	return int(math.Round(x)), int(math.Round(y))
}

func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// drawAxes draws dotted zero lines through the center.
func drawAxes(img *image.RGBA) {
	mid := imageSize / 2
	for i := 0; i < imageSize; i += axisStep {
		img.SetRGBA(i, mid, axisGray)
		img.SetRGBA(mid, i, axisGray)
	}
}

// drawReferenceCircle draws a dashed circle of referenceRadius source units.
func drawReferenceCircle(img *image.RGBA, extent float64) {
	half := float64(imageSize) / 2
	r := referenceRadius / extent * half
	for i := 0; i < circleSteps; i++ {
		if (i/dashPeriod)%2 == 1 {
			continue
		}
		a := float64(i) / circleSteps * 2 * math.Pi
		x := int(math.Round(half + r*math.Cos(a)))
		y := int(math.Round(half + r*math.Sin(a)))
		setIfInside(img, x, y, circleGray)
	}
}

// drawMarker draws a plus-shaped marker centered at (px, py).
func drawMarker(img *image.RGBA, px, py int, c color.RGBA) {
	for d := -markerArm; d <= markerArm; d++ {
		setIfInside(img, px+d, py, c)
		setIfInside(img, px, py+d, c)
	}
}

// heat maps a distance to a cold-to-warm color.
func heat(dist, maxDist float64) color.RGBA {
	t := 0.0
	if maxDist > 0 {
		t = dist / maxDist
	}
	warm := uint8(math.Round(t * maxColorByte))
	return color.RGBA{R: warm, G: 64, B: maxColorByte - warm, A: 255}
}

func setIfInside(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}
