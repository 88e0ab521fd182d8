package overlay

import (
	"image"
	"testing"

	"github.com/menta2k/garment-overlay/pkg/types"
	"github.com/menta2k/garment-overlay/pkg/viewport"
)

func testBoxes() []types.Box {
	return []types.Box{
		{RegionID: "top", X: 0.2, Y: 0.1, W: 0.6, H: 0.4},
		{RegionID: "bottom", X: 0.25, Y: 0.5, W: 0.5, H: 0.3},
		{RegionID: "shoes", X: 0.3, Y: 0.8, W: 0.4, H: 0.15},
	}
}

func TestBuildHotspotsMapsEveryBox(t *testing.T) {
	draw := types.DrawRect{DX: 0, DY: 253.75, DW: 840, DH: 472.5}
	hotspots := BuildHotspots(types.DefaultRegions(), testBoxes(), draw, nil)

	if len(hotspots) != 3 {
		t.Fatalf("expected 3 hotspots, got %d", len(hotspots))
	}
	for i, hs := range hotspots {
		want := viewport.ToViewport(hs.Box, draw)
		if hs.Rect != want {
			t.Errorf("hotspot %d rect = %+v, expected %+v", i, hs.Rect, want)
		}
		if hs.Hint != nil {
			t.Errorf("hotspot %d carries a hint without one being attached", i)
		}
	}
}

func TestBuildHotspotsSkipsUnknownRegion(t *testing.T) {
	boxes := append(testBoxes(), types.Box{RegionID: "hat", X: 0, Y: 0, W: 0.1, H: 0.1})
	draw := types.DrawRect{DW: 100, DH: 100}

	hotspots := BuildHotspots(types.DefaultRegions(), boxes, draw, nil)
	if len(hotspots) != 3 {
		t.Errorf("expected unknown region to be skipped, got %d hotspots", len(hotspots))
	}
}

func TestBuildHotspotsAttachesHints(t *testing.T) {
	draw := types.DrawRect{DW: 100, DH: 100}
	hints := map[string]types.ProductHint{
		"top": {Title: "Linen Shirt", Brand: "Acme", PriceLabel: "$49", Href: "https://shop.example/shirt"},
	}

	hotspots := BuildHotspots(types.DefaultRegions(), testBoxes(), draw, hints)
	for _, hs := range hotspots {
		if hs.Region.ID == "top" {
			if hs.Hint == nil || hs.Hint.Title != "Linen Shirt" {
				t.Errorf("top hotspot hint = %+v, expected the attached hint", hs.Hint)
			}
		} else if hs.Hint != nil {
			t.Errorf("%s hotspot unexpectedly carries a hint", hs.Region.ID)
		}
	}
}

func TestHitTest(t *testing.T) {
	draw := types.DrawRect{DX: 0, DY: 0, DW: 1000, DH: 1000}
	hotspots := BuildHotspots(types.DefaultRegions(), testBoxes(), draw, nil)

	tests := []struct {
		name string
		x, y float64
		want string
	}{
		{"inside top", 500, 200, "top"},
		{"inside bottom", 500, 600, "bottom"},
		{"inside shoes", 500, 850, "shoes"},
		{"letterbox area", 10, 10, ""},
		{"below everything", 500, 990, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := HitTest(hotspots, tt.x, tt.y)
			if tt.want == "" {
				if hs != nil {
					t.Errorf("HitTest(%v, %v) = %s, expected no hit", tt.x, tt.y, hs.Region.ID)
				}
				return
			}
			if hs == nil {
				t.Fatalf("HitTest(%v, %v) = nil, expected %s", tt.x, tt.y, tt.want)
			}
			if hs.Region.ID != tt.want {
				t.Errorf("HitTest(%v, %v) = %s, expected %s", tt.x, tt.y, hs.Region.ID, tt.want)
			}
		})
	}
}

func TestHitTestOverlapPrefersLater(t *testing.T) {
	boxes := []types.Box{
		{RegionID: "top", X: 0.1, Y: 0.1, W: 0.5, H: 0.5},
		{RegionID: "bottom", X: 0.3, Y: 0.3, W: 0.5, H: 0.5},
	}
	draw := types.DrawRect{DW: 100, DH: 100}
	hotspots := BuildHotspots(types.DefaultRegions(), boxes, draw, nil)

	hs := HitTest(hotspots, 40, 40)
	if hs == nil || hs.Region.ID != "bottom" {
		t.Errorf("expected the later hotspot to win on overlap, got %+v", hs)
	}
}

func TestRenderCanvasDimensions(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	draw := viewport.ContainFit(200, 100, 300, 300)
	hotspots := BuildHotspots(types.DefaultRegions(), testBoxes(), draw, nil)

	out := NewRenderer().Render(src, hotspots, 300, 300)
	b := out.Bounds()
	if b.Dx() != 300 || b.Dy() != 300 {
		t.Errorf("canvas = %dx%d, expected 300x300", b.Dx(), b.Dy())
	}
}

func TestRenderOutlinePainted(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	draw := viewport.ContainFit(100, 100, 100, 100)
	boxes := []types.Box{{RegionID: "top", X: 0.2, Y: 0.2, W: 0.6, H: 0.6}}
	hotspots := BuildHotspots(types.DefaultRegions(), boxes, draw, nil)

	out := NewRenderer().Render(src, hotspots, 100, 100)

	// The outline's top edge runs along y=20; the source image is black, so
	// any green there comes from the outline.
	r, g, b, _ := out.At(50, 20).RGBA()
	if g == 0 || r != 0 || b != 0 {
		t.Errorf("pixel at outline = (%d, %d, %d), expected pure green", r, g, b)
	}
}
