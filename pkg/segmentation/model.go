package segmentation

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"

	"github.com/menta2k/garment-overlay/pkg/client"
	"github.com/menta2k/garment-overlay/pkg/types"
)

// PersonPrompt asks a vision model for the full-person bounding box.
const PersonPrompt = `You are a person locator.

Return JSON only:
{
  "label": "string",
  "confidence": 0.0,
  "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels).
- The box must tightly include the whole visible person: head, torso, legs and feet.
- If several people are visible, pick the most central one.
- If no person is found, return:
  {"label":"none","confidence":0.0,"box":{"x":0.25,"y":0.10,"w":0.50,"h":0.85}}
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// ModelConfig holds the vision-model backend parameters.
type ModelConfig struct {
	Model       string
	MaskDim     int
	SendDim     int
	SendQuality int
}

// ModelProvider asks a vision model where the person is and rasterizes the
// reported box into a mask. The model itself is a black box behind the
// VisionClient interface; any client failure surfaces as a ModelError.
type ModelProvider struct {
	client client.VisionClient
	config ModelConfig
}

// NewModel creates a ModelProvider with default encoding parameters.
func NewModel(vc client.VisionClient, model string) *ModelProvider {
	return NewModelWithConfig(vc, ModelConfig{
		Model:       model,
		MaskDim:     256,
		SendDim:     1536,
		SendQuality: 85,
	})
}

// NewModelWithConfig creates a ModelProvider with custom parameters.
func NewModelWithConfig(vc client.VisionClient, config ModelConfig) *ModelProvider {
	if config.MaskDim <= 0 {
		config.MaskDim = 256
	}
	if config.SendQuality <= 0 {
		config.SendQuality = 85
	}
	return &ModelProvider{client: vc, config: config}
}

func (p *ModelProvider) Segment(ctx context.Context, img image.Image) (types.Mask, error) {
	imgB64, err := encodeForModel(img, p.config.SendDim, p.config.SendQuality)
	if err != nil {
		return types.Mask{}, &ModelError{Backend: "model", Err: err}
	}

	det, err := p.client.DetectPerson(ctx, p.config.Model, PersonPrompt, imgB64)
	if err != nil {
		return types.Mask{}, &ModelError{Backend: "model", Err: err}
	}

	w, h := maskSize(img.Bounds(), p.config.MaskDim)
	mask := types.NewMask(w, h)
	fillNormalized(mask, det.Box.Y, det.Box.Y+det.Box.H, det.Box.X, det.Box.X+det.Box.W)
	return mask, nil
}

// encodeForModel downscales and JPEG-encodes an image for transport to a
// vision model.
func encodeForModel(img image.Image, maxDim, quality int) (string, error) {
	if maxDim > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > maxDim || h > maxDim {
			if w >= h {
				img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
			}
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
