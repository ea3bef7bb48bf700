package vision

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/SuyashBhavalkar3/posturecoach/errors"
	"github.com/SuyashBhavalkar3/posturecoach/pose"
)

var (
	boneColor  = color.RGBA{R: 66, G: 245, B: 156, A: 255}
	jointColor = color.RGBA{R: 245, G: 66, B: 66, A: 255}
)

// RenderSkeleton draws the detected landmarks and their connections onto a
// copy of frame and returns the annotated frame as JPEG bytes. Landmarks
// beyond the frame (normalized coordinates outside 0..1) are clamped to
// the edge rather than dropped, matching how partially-out-of-frame
// subjects are usually rendered.
func RenderSkeleton(frame image.Image, lms []pose.Landmark) ([]byte, error) {
	bounds := frame.Bounds()
	annotated := image.NewRGBA(bounds)
	draw.Draw(annotated, bounds, frame, bounds.Min, draw.Src)

	width := bounds.Dx()
	height := bounds.Dy()

	toPixel := func(lm pose.Landmark) (int, int) {
		x := bounds.Min.X + int(lm.X*float64(width))
		y := bounds.Min.Y + int(lm.Y*float64(height))
		return clamp(x, bounds.Min.X, bounds.Max.X-1), clamp(y, bounds.Min.Y, bounds.Max.Y-1)
	}

	for _, conn := range pose.Connections {
		if conn[0] >= len(lms) || conn[1] >= len(lms) {
			continue
		}
		x0, y0 := toPixel(lms[conn[0]])
		x1, y1 := toPixel(lms[conn[1]])
		drawLine(annotated, x0, y0, x1, y1, boneColor)
	}

	for _, lm := range lms {
		x, y := toPixel(lm)
		drawDot(annotated, x, y, 2, jointColor)
	}

	data, err := EncodeJPEG(annotated)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrRenderFailed, err)
	}
	return data, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// drawLine plots a straight segment using DDA stepping along the longer
// axis.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := x1 - x0
	dy := y1 - y0

	steps := abs(dx)
	if abs(dy) > steps {
		steps = abs(dy)
	}
	if steps == 0 {
		img.SetRGBA(x0, y0, c)
		return
	}

	xStep := float64(dx) / float64(steps)
	yStep := float64(dy) / float64(steps)
	x := float64(x0)
	y := float64(y0)
	for i := 0; i <= steps; i++ {
		img.SetRGBA(int(x+0.5), int(y+0.5), c)
		x += xStep
		y += yStep
	}
}

func drawDot(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	bounds := img.Bounds()
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
				continue
			}
			img.SetRGBA(x, y, c)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
