package segmentation

import (
	"context"
	"image"

	"github.com/menta2k/garment-overlay/pkg/types"
)

// Body-centric foreground regions as y0, y1, x0, x1 fractions of the image.
// Covers torso, legs, and feet of a roughly centered standing person.
var bodyRegions = [][4]float64{
	{0.15, 0.55, 0.15, 0.85},
	{0.50, 0.90, 0.20, 0.80},
	{0.86, 1.00, 0.22, 0.78},
}

// StaticProvider is the model-free backend: a fixed body-centric silhouette
// at a capped resolution. It never fails and is fully deterministic, which
// also makes it the reference backend for tests.
type StaticProvider struct {
	MaxDim int
}

// NewStatic creates a StaticProvider with the default mask resolution.
func NewStatic() *StaticProvider {
	return &StaticProvider{MaxDim: 256}
}

func (p *StaticProvider) Segment(ctx context.Context, img image.Image) (types.Mask, error) {
	w, h := maskSize(img.Bounds(), p.MaxDim)
	mask := types.NewMask(w, h)
	for _, r := range bodyRegions {
		fillNormalized(mask, r[0], r[1], r[2], r[3])
	}
	return mask, nil
}
