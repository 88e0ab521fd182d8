package client

import (
	"context"

	"github.com/menta2k/garment-overlay/pkg/types"
)

// VisionClient is a vision model backend able to locate the person in an
// image. Implementations parse loosely structured model output and fall back
// to conservative defaults rather than failing on malformed responses.
type VisionClient interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
	DetectPerson(ctx context.Context, model, prompt, imgB64 string) (*types.PersonDetection, error)
}
