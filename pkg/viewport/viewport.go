// Package viewport maps normalized region boxes into the coordinate space of
// a letterboxed display surface. It is pure geometry with no dependency on
// any rendering backend.
package viewport

import (
	"math"

	"github.com/menta2k/garment-overlay/pkg/types"
)

// ContainFit computes the centered "contain" placement of a source rectangle
// inside a destination surface: the source aspect ratio is preserved and the
// source fully fits inside the destination.
func ContainFit(srcW, srcH, dstW, dstH float64) types.DrawRect {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return types.DrawRect{}
	}

	scale := math.Min(dstW/srcW, dstH/srcH)
	dw := srcW * scale
	dh := srcH * scale

	return types.DrawRect{
		DX: (dstW - dw) / 2,
		DY: (dstH - dh) / 2,
		DW: dw,
		DH: dh,
	}
}

// Rect is a mapped box in destination surface pixels.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether the surface point (x, y) lies inside the rect.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x < r.Left+r.Width && y >= r.Top && y < r.Top+r.Height
}

// ToViewport maps a normalized box through a draw rect into surface pixels.
// The unit box (0,0,1,1) maps exactly onto the draw rect.
func ToViewport(b types.Box, draw types.DrawRect) Rect {
	return Rect{
		Left:   draw.DX + b.X*draw.DW,
		Top:    draw.DY + b.Y*draw.DH,
		Width:  b.W * draw.DW,
		Height: b.H * draw.DH,
	}
}

// PercentRect expresses a mapped rect as percentages of the surface size,
// ready for CSS-style positioning.
type PercentRect struct {
	LeftPct   float64 `json:"leftPct"`
	TopPct    float64 `json:"topPct"`
	WidthPct  float64 `json:"widthPct"`
	HeightPct float64 `json:"heightPct"`
}

// Percent converts the rect into percentage form against the given surface.
func (r Rect) Percent(surfaceW, surfaceH float64) PercentRect {
	if surfaceW <= 0 || surfaceH <= 0 {
		return PercentRect{}
	}
	return PercentRect{
		LeftPct:   r.Left / surfaceW * 100,
		TopPct:    r.Top / surfaceH * 100,
		WidthPct:  r.Width / surfaceW * 100,
		HeightPct: r.Height / surfaceH * 100,
	}
}
