package segmentation

import (
	"context"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/garment-overlay/pkg/types"
)

// SaliencyConfig holds thresholds for the local pixel-statistics backend.
type SaliencyConfig struct {
	EdgeThreshold  float64
	ContrastWeight float64
	ColorWeight    float64
	MaxDim         int
}

// SaliencyProvider classifies foreground from edge strength and brightness,
// computed over a downscaled copy of the image. It is a coarse local backend:
// no model dependency, deterministic, and cheap enough to run inline.
type SaliencyProvider struct {
	config SaliencyConfig
}

// DefaultSaliencyConfig returns the standard thresholds.
func DefaultSaliencyConfig() SaliencyConfig {
	return SaliencyConfig{
		EdgeThreshold:  0.08,
		ContrastWeight: 0.3,
		ColorWeight:    0.2,
		MaxDim:         256,
	}
}

// NewSaliency creates a SaliencyProvider with default thresholds.
func NewSaliency() *SaliencyProvider {
	return &SaliencyProvider{config: DefaultSaliencyConfig()}
}

// NewSaliencyWithConfig creates a SaliencyProvider with custom thresholds.
func NewSaliencyWithConfig(config SaliencyConfig) *SaliencyProvider {
	return &SaliencyProvider{config: config}
}

func (p *SaliencyProvider) Segment(ctx context.Context, img image.Image) (types.Mask, error) {
	w, h := maskSize(img.Bounds(), p.config.MaxDim)
	small := imaging.Resize(img, w, h, imaging.Lanczos)
	mask := types.NewMask(w, h)

	// 8-neighbour edge strength plus brightness as the foreground signal.
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			r1, g1, b1, _ := small.At(x, y).RGBA()

			var edgeStrength float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					r2, g2, b2, _ := small.At(x+dx, y+dy).RGBA()
					dr := float64(r1) - float64(r2)
					dg := float64(g1) - float64(g2)
					db := float64(b1) - float64(b2)
					edgeStrength += math.Sqrt(dr*dr + dg*dg + db*db)
				}
			}
			edgeStrength /= 8.0 * 65535.0

			brightness := (float64(r1) + float64(g1) + float64(b1)) / (3.0 * 65535.0)

			saliency := p.config.ContrastWeight*edgeStrength + p.config.ColorWeight*brightness
			if saliency > p.config.EdgeThreshold {
				mask.Set(x, y)
			}
		}
	}

	return mask, nil
}
