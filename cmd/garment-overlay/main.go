package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/menta2k/garment-overlay/internal/config"
	"github.com/menta2k/garment-overlay/internal/utils"
	"github.com/menta2k/garment-overlay/pkg/client"
	"github.com/menta2k/garment-overlay/pkg/llamacpp"
	"github.com/menta2k/garment-overlay/pkg/loader"
	"github.com/menta2k/garment-overlay/pkg/ollama"
	"github.com/menta2k/garment-overlay/pkg/overlay"
	"github.com/menta2k/garment-overlay/pkg/pipeline"
	"github.com/menta2k/garment-overlay/pkg/segmentation"
	"github.com/menta2k/garment-overlay/pkg/types"
)

func main() {
	var in, outDir, surface, backend, url, model, cfgPath, hintsPath string
	var ext string
	var quality int
	var lossless bool
	var sendSize, sendQ, maskDim int
	var verbose bool

	flag.StringVar(&in, "in", "", "input image path or URL (jpg/png/webp)")
	flag.StringVar(&outDir, "out", "out", "output directory")
	flag.StringVar(&surface, "surface", "840x980", "display surface size as WxH")
	flag.StringVar(&backend, "backend", "", "segmentation backend: static|saliency|ollama|llamacpp (overrides config)")
	flag.StringVar(&url, "url", "", "model server URL (defaults: ollama=http://localhost:11434, llamacpp=http://localhost:8080)")
	flag.StringVar(&model, "model", "", "vision model name (overrides config)")
	flag.StringVar(&cfgPath, "config", "", "config file path (JSON)")
	flag.StringVar(&hintsPath, "hints", "", "product hints file: JSON map of region id to hint")

	flag.StringVar(&ext, "ext", "png", "overlay output format: png|jpg|webp")
	flag.IntVar(&quality, "quality", 90, "JPEG/WebP output quality (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP lossless mode")

	flag.IntVar(&sendSize, "sendsize", 0, "max long side sent to the model (px), 0=config default")
	flag.IntVar(&sendQ, "sendq", 0, "JPEG quality for the image sent to the model, 0=config default")
	flag.IntVar(&maskDim, "maskdim", 0, "mask resolution long side (px), 0=config default")

	flag.BoolVar(&verbose, "verbose", false, "enable debug logging")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	if verbose {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	if in == "" {
		log.Fatal().Msgf("usage: %s -in input.jpg|URL [-surface WxH] [-backend static|saliency|ollama|llamacpp] [-out outdir]", filepath.Base(os.Args[0]))
	}
	if !strings.HasPrefix(in, "http://") && !strings.HasPrefix(in, "https://") {
		if !utils.FileExists(in) {
			log.Fatal().Str("path", in).Msg("input file not found")
		}
		if !utils.IsImageFile(in) {
			log.Warn().Str("path", in).Msg("input extension is not a known image format")
		}
	}

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.LoadFromFile(cfgPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		cfg = loaded
	}
	if backend != "" {
		cfg.Segmentation.Backend = backend
	}
	if model != "" {
		cfg.Segmentation.Model = model
	}
	if url != "" {
		cfg.Segmentation.ServerURL = url
	}
	if sendSize > 0 {
		cfg.Segmentation.SendDim = sendSize
	}
	if sendQ > 0 {
		cfg.Segmentation.SendQuality = sendQ
	}
	if maskDim > 0 {
		cfg.Segmentation.MaskDim = maskDim
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	var surfaceW, surfaceH int
	if _, err := fmt.Sscanf(surface, "%dx%d", &surfaceW, &surfaceH); err != nil || surfaceW < 1 || surfaceH < 1 {
		log.Fatal().Str("surface", surface).Msg("surface must be WxH, e.g. 840x980")
	}

	if err := utils.EnsureDir(outDir); err != nil {
		log.Fatal().Err(err).Msg("failed to create output directory")
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create segmentation backend")
	}

	var hints map[string]types.ProductHint
	if hintsPath != "" {
		data, err := os.ReadFile(hintsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read hints file")
		}
		if err := json.Unmarshal(data, &hints); err != nil {
			log.Fatal().Err(err).Msg("failed to parse hints file")
		}
	}

	ld := loader.NewWithConfig(loader.Config{
		Timeout:   time.Duration(cfg.Loader.TimeoutSeconds) * time.Second,
		UserAgent: cfg.Loader.UserAgent,
		MaxBytes:  cfg.Loader.MaxBytes,
	})

	machine := pipeline.New(ld, provider, cfg.DeriverSettings())
	machine.SetLogger(log)

	regs := cfg.RegionSet()
	runID := machine.Submit(context.Background(), pipeline.Request{
		Source:   in,
		Regions:  regs,
		SurfaceW: float64(surfaceW),
		SurfaceH: float64(surfaceH),
	})
	machine.Wait()

	state := machine.State()
	if state.Phase != pipeline.Ready {
		log.Fatal().Str("run", runID).Str("phase", state.Phase.String()).Str("error", state.Err).Msg("pipeline failed")
	}

	for _, box := range state.Boxes {
		log.Info().
			Str("region", box.RegionID).
			Float64("x", box.X).Float64("y", box.Y).
			Float64("w", box.W).Float64("h", box.H).
			Msg("derived box")
	}

	// Re-load once more for rendering; the pipeline only keeps geometry.
	img, err := ld.Load(context.Background(), in)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to reload image for rendering")
	}

	hotspots := overlay.BuildHotspots(regs, state.Boxes, state.Draw, hints)
	rendered := overlay.NewRenderer().Render(img, hotspots, surfaceW, surfaceH)

	name := in
	if strings.HasPrefix(in, "http://") || strings.HasPrefix(in, "https://") {
		name = "remote"
	}

	outPath := utils.GenerateOutputFilename(name, outDir, "", "_overlay", strings.ToLower(ext))
	if err := ld.Save(rendered, outPath, ext, quality, lossless); err != nil {
		log.Fatal().Err(err).Msg("failed to save overlay")
	}
	log.Info().Str("path", outPath).Msg("wrote overlay")

	jsonPath := utils.GenerateOutputFilename(name, outDir, "", "_boxes", "json")
	if err := utils.WriteJSON(jsonPath, state); err != nil {
		log.Fatal().Err(err).Msg("failed to write geometry")
	}
	log.Info().Str("path", jsonPath).Msg("wrote geometry")
}

func buildProvider(cfg *config.Config) (segmentation.Provider, error) {
	switch cfg.Segmentation.Backend {
	case "static":
		return segmentation.NewStatic(), nil
	case "saliency":
		sc := segmentation.DefaultSaliencyConfig()
		sc.MaxDim = cfg.Segmentation.MaskDim
		if cfg.Segmentation.EdgeThreshold > 0 {
			sc.EdgeThreshold = cfg.Segmentation.EdgeThreshold
		}
		return segmentation.NewSaliencyWithConfig(sc), nil
	case "ollama", "llamacpp":
		var vc client.VisionClient
		var err error
		if cfg.Segmentation.Backend == "ollama" {
			serverURL := cfg.Segmentation.ServerURL
			if serverURL == "" {
				serverURL = "http://localhost:11434"
			}
			vc, err = ollama.NewClient(serverURL)
		} else {
			vc, err = llamacpp.NewClient(cfg.Segmentation.ServerURL)
		}
		if err != nil {
			return nil, err
		}
		return segmentation.NewModelWithConfig(vc, segmentation.ModelConfig{
			Model:       cfg.Segmentation.Model,
			MaskDim:     cfg.Segmentation.MaskDim,
			SendDim:     cfg.Segmentation.SendDim,
			SendQuality: cfg.Segmentation.SendQuality,
		}), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Segmentation.Backend)
	}
}
