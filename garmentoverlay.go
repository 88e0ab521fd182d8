// Package garmentoverlay derives stable garment-region boxes from a person
// photo and maps them onto a letterboxed display surface.
//
// Given a source image, a segmentation backend produces a binary person mask;
// the regions package partitions the padded person bounds into vertical bands
// (top, bottom, shoes by default) and tightens each band's box against the
// mask; the viewport package maps those normalized boxes into the drawn image
// rect of a "contain"-fitted surface.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		garmentoverlay "github.com/menta2k/garment-overlay"
//		"github.com/menta2k/garment-overlay/pkg/types"
//	)
//
//	func main() {
//		engine := garmentoverlay.New()
//
//		result, err := engine.Process(context.Background(), "model.jpg", types.DefaultRegions(), 840, 980)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		for _, box := range result.Boxes {
//			fmt.Printf("%s: %.3f,%.3f %.3fx%.3f\n", box.RegionID, box.X, box.Y, box.W, box.H)
//		}
//	}
//
// The package consists of five main components:
//
// 1. Loader (pkg/loader): fetches and decodes source images from files or URLs
// 2. Segmentation (pkg/segmentation): produces the binary person mask
// 3. Regions (pkg/regions): derives the non-overlapping region boxes
// 4. Viewport (pkg/viewport): contain-fit math and box-to-surface mapping
// 5. Overlay (pkg/overlay): hotspot construction, hit testing and rendering
//
// For reactive consumers, pkg/pipeline wraps the same sequence in a
// supersede-safe state machine where rapid successive submissions never
// surface a stale result.
package garmentoverlay

import (
	"context"
	"fmt"
	"image"

	"github.com/menta2k/garment-overlay/pkg/loader"
	"github.com/menta2k/garment-overlay/pkg/regions"
	"github.com/menta2k/garment-overlay/pkg/segmentation"
	"github.com/menta2k/garment-overlay/pkg/types"
	"github.com/menta2k/garment-overlay/pkg/viewport"
)

// Version of the garment overlay library
const Version = "1.0.0"

// Engine provides a high-level interface for region derivation and mapping
type Engine struct {
	loader   *loader.Loader
	provider segmentation.Provider
	config   regions.Config
}

// New creates an Engine with the static segmentation backend and default
// derivation parameters
func New() *Engine {
	return &Engine{
		loader:   loader.New(),
		provider: segmentation.NewStatic(),
		config:   regions.DefaultConfig(),
	}
}

// NewWithProvider creates an Engine with a custom segmentation backend
func NewWithProvider(provider segmentation.Provider) *Engine {
	return &Engine{
		loader:   loader.New(),
		provider: provider,
		config:   regions.DefaultConfig(),
	}
}

// NewWithConfig creates an Engine with full custom configuration
func NewWithConfig(loaderConfig loader.Config, provider segmentation.Provider, deriverConfig regions.Config) *Engine {
	return &Engine{
		loader:   loader.NewWithConfig(loaderConfig),
		provider: provider,
		config:   deriverConfig,
	}
}

// Result contains the derived geometry for one source image
type Result struct {
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Boxes  []types.Box    `json:"boxes"`
	Draw   types.DrawRect `json:"draw"`
}

// Process loads a source image, derives region boxes and computes the
// contain-fit placement for a surfaceW x surfaceH display surface
func (e *Engine) Process(ctx context.Context, source string, regs []types.Region, surfaceW, surfaceH float64) (Result, error) {
	img, err := e.loader.Load(ctx, source)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load image: %w", err)
	}
	return e.ProcessImage(ctx, img, regs, surfaceW, surfaceH)
}

// ProcessImage derives region boxes for an already-decoded image
func (e *Engine) ProcessImage(ctx context.Context, img image.Image, regs []types.Region, surfaceW, surfaceH float64) (Result, error) {
	boxes, err := e.DeriveBoxes(ctx, img, regs)
	if err != nil {
		return Result{}, err
	}

	bounds := img.Bounds()
	return Result{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Boxes:  boxes,
		Draw:   viewport.ContainFit(float64(bounds.Dx()), float64(bounds.Dy()), surfaceW, surfaceH),
	}, nil
}

// DeriveBoxes runs segmentation and box derivation without viewport mapping
func (e *Engine) DeriveBoxes(ctx context.Context, img image.Image, regs []types.Region) ([]types.Box, error) {
	mask, err := e.provider.Segment(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("segmentation failed: %w", err)
	}
	return regions.Derive(mask, regs, e.config), nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
