// Package loader fetches and decodes source images from files or URLs and
// exposes their natural pixel dimensions.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// LoadError reports that an image could not be fetched or decoded. It is
// retry-eligible: nothing about the pipeline state is corrupted by it.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Config holds fetch parameters.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
}

// DefaultConfig returns the standard fetch parameters.
func DefaultConfig() Config {
	return Config{
		Timeout:   30 * time.Second,
		UserAgent: "garment-overlay/1.0",
		MaxBytes:  32 << 20,
	}
}

// Loader loads images from file paths or http(s) URLs. URL fetches are
// anonymous: the client carries no cookie jar and sets no referrer, so the
// fetched pixels stay readable by the segmentation step.
type Loader struct {
	config Config
	client *http.Client
}

// New creates a Loader with default configuration.
func New() *Loader {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a Loader with custom configuration.
func NewWithConfig(config Config) *Loader {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Loader{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Load loads an image from either a file path or a URL.
func (l *Loader) Load(ctx context.Context, source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.loadURL(ctx, source)
	}
	return l.loadFile(source)
}

func (l *Loader) loadURL(ctx context.Context, imageURL string) (image.Image, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, &LoadError{Source: imageURL, Err: fmt.Errorf("invalid URL: %v", err)}
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, &LoadError{Source: imageURL, Err: fmt.Errorf("unsupported URL scheme: %s", parsedURL.Scheme)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, &LoadError{Source: imageURL, Err: err}
	}
	if l.config.UserAgent != "" {
		req.Header.Set("User-Agent", l.config.UserAgent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &LoadError{Source: imageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LoadError{Source: imageURL, Err: fmt.Errorf("HTTP %d %s", resp.StatusCode, resp.Status)}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, &LoadError{Source: imageURL, Err: fmt.Errorf("not an image (Content-Type: %s)", contentType)}
	}

	body := resp.Body
	if l.config.MaxBytes > 0 {
		body = struct {
			io.Reader
			io.Closer
		}{io.LimitReader(resp.Body, l.config.MaxBytes), resp.Body}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &LoadError{Source: imageURL, Err: err}
	}

	img, err := decodeBytes(data)
	if err != nil {
		return nil, &LoadError{Source: imageURL, Err: err}
	}
	return img, nil
}

func (l *Loader) loadFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer f.Close()

	// Primary path: registered stdlib decoders.
	if img, _, err := image.Decode(f); err == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode, then imaging with its own sniffing.
	if _, err := f.Seek(0, io.SeekStart); err == nil {
		if img, err := webp.Decode(f); err == nil {
			return img, nil
		}
	}
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	return nil, &LoadError{Source: path, Err: fmt.Errorf("unknown image format")}
}

// decodeBytes decodes an image from raw bytes with WebP fallback.
func decodeBytes(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("unknown or unsupported image format")
}

// Save writes an image to a file in the given format.
func (l *Loader) Save(img image.Image, path, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		return webp.Encode(f, img, opts)
	case "png":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return png.Encode(f, img)
	default: // jpg/jpeg
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
	}
}

// Info contains the natural dimensions of a loaded image.
type Info struct {
	Width       int
	Height      int
	AspectRatio float64
}

// GetInfo returns the natural dimensions of an image.
func GetInfo(img image.Image) Info {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	info := Info{Width: width, Height: height}
	if height > 0 {
		info.AspectRatio = float64(width) / float64(height)
	}
	return info
}
