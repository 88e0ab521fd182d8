// Package segmentation produces foreground/background person masks from
// images. The Provider interface is the pipeline's injection point: the box
// derivation places no constraint on how a backend computes its mask, only on
// the mask shape it returns.
package segmentation

import (
	"context"
	"fmt"
	"image"

	"github.com/menta2k/garment-overlay/pkg/types"
)

// Provider segments a loaded image into a foreground mask at the backend's
// native resolution.
type Provider interface {
	Segment(ctx context.Context, img image.Image) (types.Mask, error)
}

// ModelError reports a segmentation backend failure. Degenerate masks are not
// errors; only fetch, inference, and protocol failures surface here.
type ModelError struct {
	Backend string
	Err     error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("segmentation backend %s: %v", e.Backend, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// maskSize caps the mask resolution at maxDim on the long side while
// preserving the image aspect ratio.
func maskSize(bounds image.Rectangle, maxDim int) (int, int) {
	w, h := bounds.Dx(), bounds.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return w, h
	}
	if w >= h {
		return maxDim, maxInt(1, h*maxDim/w)
	}
	return maxInt(1, w*maxDim/h), maxDim
}

// fillNormalized marks the rectangle given as y0, y1, x0, x1 fractions of the
// mask dimensions as foreground.
func fillNormalized(mask types.Mask, y0, y1, x0, x1 float64) {
	xs := int(x0 * float64(mask.Width))
	xe := int(x1 * float64(mask.Width))
	ys := int(y0 * float64(mask.Height))
	ye := int(y1 * float64(mask.Height))
	for y := ys; y < ye; y++ {
		for x := xs; x < xe; x++ {
			mask.Set(x, y)
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
