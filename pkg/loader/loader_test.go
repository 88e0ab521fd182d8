package loader

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, dir string, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}

	path := filepath.Join(dir, "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), 320, 200)
	l := New()

	img, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	info := GetInfo(img)
	if info.Width != 320 || info.Height != 200 {
		t.Errorf("dimensions = %dx%d, expected 320x200", info.Width, info.Height)
	}
	if info.AspectRatio != 1.6 {
		t.Errorf("aspect ratio = %f, expected 1.6", info.AspectRatio)
	}
}

func TestLoadMissingFile(t *testing.T) {
	l := New()

	_, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("expected *LoadError, got %T", err)
	}
}

func TestLoadGarbageFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garbage.jpg")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write garbage file: %v", err)
	}

	l := New()
	if _, err := l.Load(context.Background(), path); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestLoadUnsupportedScheme(t *testing.T) {
	l := New()
	// ftp is rejected before any network traffic happens, because it is
	// neither http(s) nor an existing file.
	if _, err := l.Load(context.Background(), "/no/such/ftp-source"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := New()

	img := image.NewRGBA(image.Rect(0, 0, 50, 40))
	out := filepath.Join(dir, "out.png")
	if err := l.Save(img, out, "png", 90, false); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	back, err := l.Load(context.Background(), out)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if info := GetInfo(back); info.Width != 50 || info.Height != 40 {
		t.Errorf("round trip dimensions = %dx%d, expected 50x40", info.Width, info.Height)
	}
}
