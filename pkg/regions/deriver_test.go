package regions

import (
	"math"
	"testing"

	"github.com/menta2k/garment-overlay/pkg/types"
)

// fillRect marks a rectangle of foreground pixels, bounds inclusive.
func fillRect(mask types.Mask, x0, y0, x1, y1 int) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			mask.Set(x, y)
		}
	}
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestPersonBoundsPadded(t *testing.T) {
	mask := types.NewMask(100, 100)
	fillRect(mask, 20, 10, 79, 89)

	minX, minY, maxX, maxY := PersonBounds(mask, DefaultConfig())

	if !approxEqual(minX, 17, 0.001) {
		t.Errorf("minX = %f, expected 17", minX)
	}
	if !approxEqual(minY, 8, 0.001) {
		t.Errorf("minY = %f, expected 8", minY)
	}
	if !approxEqual(maxX, 82, 0.001) {
		t.Errorf("maxX = %f, expected 82", maxX)
	}
	if !approxEqual(maxY, 91, 0.001) {
		t.Errorf("maxY = %f, expected 91", maxY)
	}
}

func TestPersonBoundsEmptyMaskFallback(t *testing.T) {
	mask := types.NewMask(50, 50)

	minX, minY, maxX, maxY := PersonBounds(mask, DefaultConfig())

	if !approxEqual(minX, 12.5, 0.001) || !approxEqual(maxX, 37.5, 0.001) {
		t.Errorf("fallback X = [%f, %f], expected [12.5, 37.5]", minX, maxX)
	}
	if !approxEqual(minY, 5, 0.001) || !approxEqual(maxY, 47.5, 0.001) {
		t.Errorf("fallback Y = [%f, %f], expected [5, 47.5]", minY, maxY)
	}
}

func TestPersonBoundsClampedToMask(t *testing.T) {
	mask := types.NewMask(100, 100)
	fillRect(mask, 0, 0, 99, 99)

	minX, minY, maxX, maxY := PersonBounds(mask, DefaultConfig())

	if minX < 0 || minY < 0 {
		t.Errorf("padded bounds escaped the mask: min = (%f, %f)", minX, minY)
	}
	if maxX > 100 || maxY > 100 {
		t.Errorf("padded bounds escaped the mask: max = (%f, %f)", maxX, maxY)
	}
}

func TestSplitBandsPartitionExactly(t *testing.T) {
	configs := []Config{
		DefaultConfig(),
		{TopFrac: 0.5, BottomEndFrac: 0.99, MinShoesFrac: 0.12},
		{TopFrac: 0.9, BottomEndFrac: 0.95, MinShoesFrac: 0.2},
		{TopFrac: 0.1, BottomEndFrac: 0.5, MinShoesFrac: 0.05},
	}

	for ci, cfg := range configs {
		for n := 1; n <= 5; n++ {
			bands := SplitBands(8, 91, n, cfg)
			if len(bands) != n {
				t.Fatalf("config %d: expected %d bands, got %d", ci, n, len(bands))
			}

			if bands[0].Y0 != 8 {
				t.Errorf("config %d n=%d: first band starts at %f, expected 8", ci, n, bands[0].Y0)
			}
			if bands[n-1].Y1 != 91 {
				t.Errorf("config %d n=%d: last band ends at %f, expected 91", ci, n, bands[n-1].Y1)
			}

			// No gap and no overlap: each band starts exactly where the
			// previous one ends.
			for i := 1; i < n; i++ {
				if bands[i].Y0 != bands[i-1].Y1 {
					t.Errorf("config %d n=%d: band %d starts at %f, previous ends at %f",
						ci, n, i, bands[i].Y0, bands[i-1].Y1)
				}
			}
			for i, b := range bands {
				if b.Y1 < b.Y0 {
					t.Errorf("config %d n=%d: band %d is inverted: [%f, %f)", ci, n, i, b.Y0, b.Y1)
				}
			}
		}
	}
}

func TestSplitBandsShoesMinimum(t *testing.T) {
	// The default configuration leaves only 8% for the shoes band, below the
	// 12% minimum, so the clamp must kick in.
	cfg := DefaultConfig()
	bands := SplitBands(8, 91, 3, cfg)

	height := 91.0 - 8.0
	shoes := bands[2].Y1 - bands[2].Y0
	want := cfg.MinShoesFrac * height

	if shoes < want-0.001 {
		t.Errorf("shoes band height = %f, expected at least %f", shoes, want)
	}
	if !approxEqual(shoes, want, 0.001) {
		t.Errorf("shoes band height = %f, expected the clamped minimum %f, not the unclamped default", shoes, want)
	}
}

func TestSplitBandsTopFracAboveBottomEnd(t *testing.T) {
	cfg := Config{TopFrac: 0.95, BottomEndFrac: 0.92, MinShoesFrac: 0.12}
	bands := SplitBands(0, 100, 3, cfg)

	for i := 1; i < len(bands); i++ {
		if bands[i].Y0 < bands[i-1].Y0 {
			t.Errorf("band %d starts before band %d", i, i-1)
		}
		if bands[i].Y0 != bands[i-1].Y1 {
			t.Errorf("bands %d and %d are not contiguous", i-1, i)
		}
	}
}

func TestDeriveScenario100x100(t *testing.T) {
	mask := types.NewMask(100, 100)
	fillRect(mask, 20, 10, 79, 89)

	boxes := Derive(mask, types.DefaultRegions(), DefaultConfig())
	if len(boxes) != 3 {
		t.Fatalf("expected 3 boxes, got %d", len(boxes))
	}

	// Person box is [8, 91] in Y, height 83. The shoes band must be clamped
	// to 12% of that, roughly 10 mask pixels, never the unclamped 8% default.
	bands := SplitBands(8, 91, 3, DefaultConfig())
	shoesBand := bands[2].Y1 - bands[2].Y0
	if !approxEqual(shoesBand, 0.12*83, 0.001) {
		t.Errorf("shoes band height = %fpx, expected the clamped minimum %fpx", shoesBand, 0.12*83)
	}

	shoes := boxes[2]
	if shoes.H < 0.0996 {
		t.Errorf("shoes box height = %f, expected at least the band height", shoes.H)
	}

	for i, b := range boxes {
		if b.RegionID == "" {
			t.Errorf("box %d has no region id", i)
		}
	}
}

func TestDeriveEmptyMask(t *testing.T) {
	mask := types.NewMask(50, 50)

	boxes := Derive(mask, types.DefaultRegions(), DefaultConfig())
	if len(boxes) != 3 {
		t.Fatalf("expected 3 boxes, got %d", len(boxes))
	}

	// All three bands derive from the fallback person box and must be valid
	// and vertically ordered.
	for i, b := range boxes {
		if b.W <= 0 || b.H <= 0 {
			t.Errorf("box %d is degenerate: %+v", i, b)
		}
	}
	for i := 1; i < len(boxes); i++ {
		if boxes[i].Y < boxes[i-1].Y {
			t.Errorf("box %d starts above box %d", i, i-1)
		}
	}
}

func TestDeriveBoxBounds(t *testing.T) {
	masks := []types.Mask{
		types.NewMask(64, 64),
		types.NewMask(100, 100),
		types.NewMask(33, 97),
	}
	fillRect(masks[1], 20, 10, 79, 89)
	fillRect(masks[2], 0, 0, 32, 96)
	// A sparse diagonal pattern.
	for i := 0; i < 60; i++ {
		masks[0].Set(i, i)
	}

	for mi, mask := range masks {
		boxes := Derive(mask, types.DefaultRegions(), DefaultConfig())
		for i, b := range boxes {
			if b.X < 0 || b.X > 0.95 {
				t.Errorf("mask %d box %d: x = %f out of [0, 0.95]", mi, i, b.X)
			}
			if b.Y < 0 || b.Y > 0.95 {
				t.Errorf("mask %d box %d: y = %f out of [0, 0.95]", mi, i, b.Y)
			}
			if b.W < 0.12 || b.W > 0.98 {
				t.Errorf("mask %d box %d: w = %f out of [0.12, 0.98]", mi, i, b.W)
			}
			if b.H < 0.12 || b.H > 0.98 {
				t.Errorf("mask %d box %d: h = %f out of [0.12, 0.98]", mi, i, b.H)
			}
		}
	}
}

func TestDeriveDeterministic(t *testing.T) {
	mask := types.NewMask(100, 100)
	fillRect(mask, 20, 10, 79, 89)
	regs := types.DefaultRegions()
	cfg := DefaultConfig()

	first := Derive(mask, regs, cfg)
	second := Derive(mask, regs, cfg)

	if len(first) != len(second) {
		t.Fatalf("length mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("box %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestDeriveBandWithoutForeground(t *testing.T) {
	// Foreground only in the upper half; the bottom and shoes bands must fall
	// back to the person box X extent instead of vanishing.
	mask := types.NewMask(100, 100)
	fillRect(mask, 30, 5, 70, 40)

	boxes := Derive(mask, types.DefaultRegions(), DefaultConfig())
	for i, b := range boxes {
		if b.W < 0.12 {
			t.Errorf("box %d collapsed: w = %f", i, b.W)
		}
	}
}

func TestDeriveEmptyRegions(t *testing.T) {
	mask := types.NewMask(10, 10)
	if boxes := Derive(mask, nil, DefaultConfig()); boxes != nil {
		t.Errorf("expected nil for empty region set, got %v", boxes)
	}
}

func BenchmarkDerive(b *testing.B) {
	mask := types.NewMask(512, 512)
	fillRect(mask, 100, 50, 400, 480)
	regs := types.DefaultRegions()
	cfg := DefaultConfig()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Derive(mask, regs, cfg)
	}
}
