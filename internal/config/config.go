package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/menta2k/garment-overlay/pkg/regions"
	"github.com/menta2k/garment-overlay/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Regions      []RegionConfig     `json:"regions"`
	Deriver      DeriverConfig      `json:"deriver"`
	Loader       LoaderConfig       `json:"loader"`
	Segmentation SegmentationConfig `json:"segmentation"`
	Output       OutputConfig       `json:"output"`
}

// RegionConfig describes one garment region in derivation order
type RegionConfig struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// DeriverConfig holds box derivation parameters
type DeriverConfig struct {
	PersonPadX    float64 `json:"person_pad_x"`
	PersonPadY    float64 `json:"person_pad_y"`
	RegionPadX    float64 `json:"region_pad_x"`
	TopFrac       float64 `json:"top_frac"`
	BottomEndFrac float64 `json:"bottom_end_frac"`
	MinShoesFrac  float64 `json:"min_shoes_frac"`
}

// LoaderConfig holds image fetch parameters
type LoaderConfig struct {
	TimeoutSeconds int    `json:"timeout_seconds"`
	UserAgent      string `json:"user_agent"`
	MaxBytes       int64  `json:"max_bytes"`
}

// SegmentationConfig selects and configures the mask backend
type SegmentationConfig struct {
	Backend       string  `json:"backend"` // static, saliency, ollama, llamacpp
	Model         string  `json:"model"`
	ServerURL     string  `json:"server_url"`
	MaskDim       int     `json:"mask_dim"`
	SendDim       int     `json:"send_dim"`
	SendQuality   int     `json:"send_quality"`
	EdgeThreshold float64 `json:"edge_threshold"`
}

// OutputConfig holds render output parameters
type OutputConfig struct {
	Format   string `json:"format"`
	Quality  int    `json:"quality"`
	Lossless bool   `json:"lossless"`
	Dir      string `json:"dir"`
}

// Default returns a configuration with default values
func Default() *Config {
	d := regions.DefaultConfig()
	return &Config{
		Regions: []RegionConfig{
			{ID: "top", Label: "Top"},
			{ID: "bottom", Label: "Bottom"},
			{ID: "shoes", Label: "Shoes"},
		},
		Deriver: DeriverConfig{
			PersonPadX:    d.PersonPadX,
			PersonPadY:    d.PersonPadY,
			RegionPadX:    d.RegionPadX,
			TopFrac:       d.TopFrac,
			BottomEndFrac: d.BottomEndFrac,
			MinShoesFrac:  d.MinShoesFrac,
		},
		Loader: LoaderConfig{
			TimeoutSeconds: 30,
			UserAgent:      "garment-overlay/1.0",
			MaxBytes:       32 << 20,
		},
		Segmentation: SegmentationConfig{
			Backend:       "static",
			Model:         "minicpm-v",
			ServerURL:     "",
			MaskDim:       256,
			SendDim:       1536,
			SendQuality:   85,
			EdgeThreshold: 0.08,
		},
		Output: OutputConfig{
			Format:  "png",
			Quality: 90,
			Dir:     "./output",
		},
	}
}

// RegionSet converts the configured regions to the derivation order list
func (c *Config) RegionSet() []types.Region {
	regs := make([]types.Region, 0, len(c.Regions))
	for _, r := range c.Regions {
		regs = append(regs, types.Region{ID: r.ID, Label: r.Label})
	}
	return regs
}

// DeriverSettings converts the deriver section to a regions.Config
func (c *Config) DeriverSettings() regions.Config {
	return regions.Config{
		PersonPadX:    c.Deriver.PersonPadX,
		PersonPadY:    c.Deriver.PersonPadY,
		RegionPadX:    c.Deriver.RegionPadX,
		TopFrac:       c.Deriver.TopFrac,
		BottomEndFrac: c.Deriver.BottomEndFrac,
		MinShoesFrac:  c.Deriver.MinShoesFrac,
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Regions) == 0 {
		return fmt.Errorf("regions cannot be empty")
	}

	seen := make(map[string]bool, len(c.Regions))
	for _, r := range c.Regions {
		if r.ID == "" {
			return fmt.Errorf("region id cannot be empty")
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate region id: %s", r.ID)
		}
		seen[r.ID] = true
	}

	if c.Deriver.TopFrac <= 0 || c.Deriver.TopFrac >= 1 {
		return fmt.Errorf("deriver.top_frac must be between 0 and 1")
	}

	if c.Deriver.BottomEndFrac <= 0 || c.Deriver.BottomEndFrac > 1 {
		return fmt.Errorf("deriver.bottom_end_frac must be between 0 and 1")
	}

	if c.Deriver.MinShoesFrac < 0 || c.Deriver.MinShoesFrac >= 1 {
		return fmt.Errorf("deriver.min_shoes_frac must be between 0 and 1")
	}

	switch c.Segmentation.Backend {
	case "static", "saliency", "ollama", "llamacpp":
	default:
		return fmt.Errorf("segmentation.backend must be one of: static, saliency, ollama, llamacpp")
	}

	if c.Segmentation.MaskDim < 16 {
		return fmt.Errorf("segmentation.mask_dim must be at least 16")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	if c.Loader.TimeoutSeconds < 1 {
		return fmt.Errorf("loader.timeout_seconds must be positive")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "garment-overlay", "config.json")
}
