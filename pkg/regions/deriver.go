// Package regions derives stable garment-region bounding boxes from a binary
// person-segmentation mask.
//
// The derivation is a pure function over the mask: a single foreground scan
// yields a padded "person box", the person box is partitioned into contiguous
// vertical bands (one per configured region), and each band is tightened to
// the foreground it actually contains. Every step degrades to a deterministic
// fallback instead of failing, so any mask, including an empty one, produces
// a valid box set.
package regions

import (
	"math"

	"github.com/menta2k/garment-overlay/pkg/types"
)

// Config holds the band-partition fractions and padding ratios. Padding
// fields are fractions of mask width/height; band fields are fractions of
// person-box height.
type Config struct {
	PersonPadX    float64
	PersonPadY    float64
	RegionPadX    float64
	TopFrac       float64
	BottomEndFrac float64
	MinShoesFrac  float64
}

// DefaultConfig returns the standard derivation parameters.
func DefaultConfig() Config {
	return Config{
		PersonPadX:    0.03,
		PersonPadY:    0.02,
		RegionPadX:    0.06,
		TopFrac:       0.62,
		BottomEndFrac: 0.92,
		MinShoesFrac:  0.12,
	}
}

// Fallback person box for masks with no foreground pixel, as fractions of the
// mask dimensions. Used verbatim, without padding.
const (
	fallbackX0 = 0.25
	fallbackX1 = 0.75
	fallbackY0 = 0.10
	fallbackY1 = 0.95
)

// Safety expansion applied to every normalized box so no box is degenerate
// and none fully touches the normalized edge.
const (
	safetyShift = 0.005
	safetyGrow  = 0.01
	maxOrigin   = 0.95
	minExtent   = 0.12
	maxExtent   = 0.98
)

// Band is a half-open vertical interval [Y0, Y1) in mask-pixel coordinates.
type Band struct {
	Y0 float64
	Y1 float64
}

// Derive computes one normalized box per region. Identical inputs always
// yield identical output; the result is never an error, degenerate masks fall
// back to fixed rectangles.
func Derive(mask types.Mask, regs []types.Region, cfg Config) []types.Box {
	if len(regs) == 0 || mask.Width <= 0 || mask.Height <= 0 {
		return nil
	}
	w := float64(mask.Width)
	h := float64(mask.Height)

	minX, minY, maxX, maxY := PersonBounds(mask, cfg)
	bands := SplitBands(minY, maxY, len(regs), cfg)

	boxes := make([]types.Box, 0, len(regs))
	for i, reg := range regs {
		band := bands[i]
		bMinX, bMaxX, found := bandBounds(mask, band)
		if !found {
			// Band holds no foreground, fall back to the person box extent.
			bMinX, bMaxX = minX, maxX
		}
		// Expand in X only; Y stays fixed to the band boundaries so the
		// no-overlap guarantee survives.
		bMinX = clamp(bMinX-cfg.RegionPadX*w, 0, w)
		bMaxX = clamp(bMaxX+cfg.RegionPadX*w, 0, w)

		box := types.Box{
			RegionID: reg.ID,
			X:        bMinX / w,
			Y:        band.Y0 / h,
			W:        (bMaxX - bMinX) / w,
			H:        (band.Y1 - band.Y0) / h,
		}
		boxes = append(boxes, safetyExpand(box))
	}
	return boxes
}

// PersonBounds scans the full mask once and returns the padded foreground
// bounding box as minX, minY, maxX, maxY in mask-pixel coordinates. A mask
// with no foreground yields the fixed fallback rectangle.
func PersonBounds(mask types.Mask, cfg Config) (float64, float64, float64, float64) {
	w := float64(mask.Width)
	h := float64(mask.Height)

	minX, minY := mask.Width, mask.Height
	maxX, maxY := -1, -1
	for y := 0; y < mask.Height; y++ {
		row := mask.Data[y*mask.Width : (y+1)*mask.Width]
		for x, v := range row {
			if v == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < 0 {
		return fallbackX0 * w, fallbackY0 * h, fallbackX1 * w, fallbackY1 * h
	}

	return clamp(float64(minX)-cfg.PersonPadX*w, 0, w),
		clamp(float64(minY)-cfg.PersonPadY*h, 0, h),
		clamp(float64(maxX)+cfg.PersonPadX*w, 0, w),
		clamp(float64(maxY)+cfg.PersonPadY*h, 0, h)
}

// SplitBands partitions [minY, maxY) into n contiguous bands with no gap and
// no overlap. The final band is guaranteed at least MinShoesFrac of the
// interval height; a BottomEndFrac that would leave it smaller is shrunk
// before the split.
func SplitBands(minY, maxY float64, n int, cfg Config) []Band {
	if n <= 0 {
		return nil
	}
	height := maxY - minY
	cuts := cutFractions(n, cfg)

	bands := make([]Band, n)
	y0 := minY
	for i := 0; i < n; i++ {
		y1 := maxY
		if i < len(cuts) {
			y1 = minY + height*cuts[i]
		}
		bands[i] = Band{Y0: y0, Y1: y1}
		y0 = y1
	}
	return bands
}

// cutFractions returns the n-1 interior cut points in [0,1]. The three-region
// case uses the configured fractions directly; other counts space the cuts
// evenly while keeping the final-band guarantee.
func cutFractions(n int, cfg Config) []float64 {
	if n <= 1 {
		return nil
	}
	lastCut := cfg.BottomEndFrac
	if 1-lastCut < cfg.MinShoesFrac {
		lastCut = 1 - cfg.MinShoesFrac
	}

	cuts := make([]float64, n-1)
	switch n {
	case 2:
		cuts[0] = math.Min(cfg.TopFrac, lastCut)
	case 3:
		cuts[0] = cfg.TopFrac
		cuts[1] = lastCut
	default:
		for i := 0; i < n-2; i++ {
			cuts[i] = lastCut * float64(i+1) / float64(n-1)
		}
		cuts[n-2] = lastCut
	}

	// Keep cuts monotonic; the final-band guarantee wins over TopFrac.
	for i := n - 3; i >= 0; i-- {
		if cuts[i] > cuts[i+1] {
			cuts[i] = cuts[i+1]
		}
	}
	return cuts
}

// bandBounds is the foreground X extent restricted to one band's Y range.
func bandBounds(mask types.Mask, b Band) (float64, float64, bool) {
	minX, maxX := mask.Width, -1

	yStart := int(math.Ceil(b.Y0))
	if yStart < 0 {
		yStart = 0
	}
	for y := yStart; y < mask.Height && float64(y) < b.Y1; y++ {
		row := mask.Data[y*mask.Width : (y+1)*mask.Width]
		for x, v := range row {
			if v == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
		}
	}

	if maxX < 0 {
		return 0, 0, false
	}
	return float64(minX), float64(maxX), true
}

func safetyExpand(b types.Box) types.Box {
	b.X = clamp(b.X-safetyShift, 0, maxOrigin)
	b.Y = clamp(b.Y-safetyShift, 0, maxOrigin)
	b.W = clamp(b.W+safetyGrow, minExtent, maxExtent)
	b.H = clamp(b.H+safetyGrow, minExtent, maxExtent)
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
