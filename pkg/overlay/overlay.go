// Package overlay turns derived region boxes into display-surface hotspots
// and renders them onto a letterboxed canvas.
package overlay

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/garment-overlay/pkg/types"
	"github.com/menta2k/garment-overlay/pkg/viewport"
)

// Hotspot is one interactive region on the display surface. Rect is in
// surface pixels; Box keeps the normalized source-image coordinates it was
// mapped from.
type Hotspot struct {
	Region types.Region
	Box    types.Box
	Rect   viewport.Rect
	Hint   *types.ProductHint
}

// BuildHotspots maps derived boxes into surface coordinates. Boxes whose
// RegionID has no matching region are skipped; hints are attached by region
// id when present.
func BuildHotspots(regs []types.Region, boxes []types.Box, draw types.DrawRect, hints map[string]types.ProductHint) []Hotspot {
	byID := make(map[string]types.Region, len(regs))
	for _, r := range regs {
		byID[r.ID] = r
	}

	hotspots := make([]Hotspot, 0, len(boxes))
	for _, box := range boxes {
		region, ok := byID[box.RegionID]
		if !ok {
			continue
		}
		hs := Hotspot{
			Region: region,
			Box:    box,
			Rect:   viewport.ToViewport(box, draw),
		}
		if hint, ok := hints[box.RegionID]; ok {
			h := hint
			hs.Hint = &h
		}
		hotspots = append(hotspots, hs)
	}
	return hotspots
}

// HitTest returns the hotspot under the surface point (x, y), or nil. When
// hotspots overlap after mapping, the later one wins: boxes are derived
// top-to-bottom, so the lower garment sits on top.
func HitTest(hotspots []Hotspot, x, y float64) *Hotspot {
	for i := len(hotspots) - 1; i >= 0; i-- {
		if hotspots[i].Rect.Contains(x, y) {
			return &hotspots[i]
		}
	}
	return nil
}

// RenderConfig holds render appearance parameters.
type RenderConfig struct {
	Background color.NRGBA
	Outline    map[string]color.NRGBA // region id -> outline color
	Fallback   color.NRGBA            // outline for unmapped region ids
}

// DefaultRenderConfig returns the standard palette.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Background: color.NRGBA{18, 18, 18, 255},
		Outline: map[string]color.NRGBA{
			"top":    {0, 255, 0, 255},
			"bottom": {255, 204, 0, 255},
			"shoes":  {0, 170, 255, 255},
		},
		Fallback: color.NRGBA{255, 255, 255, 255},
	}
}

// Renderer draws hotspots onto a letterboxed surface.
type Renderer struct {
	config RenderConfig
}

// NewRenderer creates a Renderer with the default palette.
func NewRenderer() *Renderer {
	return &Renderer{config: DefaultRenderConfig()}
}

// NewRendererWithConfig creates a Renderer with a custom palette.
func NewRendererWithConfig(config RenderConfig) *Renderer {
	return &Renderer{config: config}
}

// Render paints the source image contain-fitted onto a surfaceW x surfaceH
// canvas and outlines every hotspot. Hotspots carrying a hint get a filled
// corner marker as the interaction affordance.
func (r *Renderer) Render(img image.Image, hotspots []Hotspot, surfaceW, surfaceH int) image.Image {
	canvas := imaging.New(surfaceW, surfaceH, r.config.Background)

	bounds := img.Bounds()
	draw := viewport.ContainFit(float64(bounds.Dx()), float64(bounds.Dy()), float64(surfaceW), float64(surfaceH))
	if draw.DW > 0 && draw.DH > 0 {
		scaled := imaging.Resize(img, int(draw.DW+0.5), int(draw.DH+0.5), imaging.Lanczos)
		canvas = imaging.Paste(canvas, scaled, image.Pt(int(draw.DX+0.5), int(draw.DY+0.5)))
	}

	stroke := int(math.Max(2, 0.004*float64(minInt(surfaceW, surfaceH))))
	for _, hs := range hotspots {
		c, ok := r.config.Outline[hs.Region.ID]
		if !ok {
			c = r.config.Fallback
		}
		drawRect(canvas, hs.Rect, c, stroke)
		if hs.Hint != nil {
			drawHintMarker(canvas, hs.Rect, c, stroke)
		}
	}

	return canvas
}

func drawRect(img *image.NRGBA, rect viewport.Rect, c color.NRGBA, stroke int) {
	x0 := int(rect.Left + 0.5)
	y0 := int(rect.Top + 0.5)
	x1 := int(rect.Left + rect.Width + 0.5)
	y1 := int(rect.Top + rect.Height + 0.5)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	for s := 0; s < stroke; s++ {
		drawHLine(img, y0+s, x0, x1, c)
		drawHLine(img, y1-1-s, x0, x1, c)
		drawVLine(img, x0+s, y0, y1, c)
		drawVLine(img, x1-1-s, y0, y1, c)
	}
}

// drawHintMarker fills a small square in the hotspot's top-right corner.
func drawHintMarker(img *image.NRGBA, rect viewport.Rect, c color.NRGBA, stroke int) {
	size := 4 * stroke
	x1 := int(rect.Left + rect.Width + 0.5)
	y0 := int(rect.Top + 0.5)
	for y := y0; y < y0+size; y++ {
		drawHLine(img, y, x1-size, x1, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
