package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/menta2k/lanefit/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Geometry    GeometryConfig    `json:"geometry" yaml:"geometry"`
	Calibration CalibrationConfig `json:"calibration" yaml:"calibration"`
	Dataset     DatasetConfig     `json:"dataset" yaml:"dataset"`
	Augment     AugmentConfig     `json:"augment" yaml:"augment"`
	Vision      VisionConfig      `json:"vision" yaml:"vision"`
	Output      OutputConfig      `json:"output" yaml:"output"`
}

// GeometryConfig holds the frame constants shared by the crop pipeline and
// the label codec
type GeometryConfig struct {
	RawSize     int     `json:"raw_size" yaml:"raw_size"`
	CropFactorX float64 `json:"crop_factor_x" yaml:"crop_factor_x"`
	DesiredSize int     `json:"desired_size" yaml:"desired_size"`
	MaxSlope    float64 `json:"max_slope" yaml:"max_slope"`
	Mode        string  `json:"mode" yaml:"mode"`
	Channel     string  `json:"channel" yaml:"channel"`
	Filter      string  `json:"filter" yaml:"filter"`
}

// Interval is a closed [min, max] range
type Interval struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// CalibrationConfig holds the fitted bounds of the reduced label variant
type CalibrationConfig struct {
	W  Interval `json:"w" yaml:"w"`
	Q1 Interval `json:"q1" yaml:"q1"`
	Q2 Interval `json:"q2" yaml:"q2"`
}

// DatasetConfig locates the label table and the captures
type DatasetConfig struct {
	CSVPath  string `json:"csv_path" yaml:"csv_path"`
	ImageDir string `json:"image_dir" yaml:"image_dir"`
	Variant  string `json:"variant" yaml:"variant"`
	FlipY    bool   `json:"flip_y" yaml:"flip_y"`
}

// AugmentConfig holds configuration for rotation augmentation
type AugmentConfig struct {
	AngleMin      float64 `json:"angle_min" yaml:"angle_min"`
	AngleMax      float64 `json:"angle_max" yaml:"angle_max"`
	AngleStep     float64 `json:"angle_step" yaml:"angle_step"`
	Fraction      float64 `json:"fraction" yaml:"fraction"`
	Interpolation string  `json:"interpolation" yaml:"interpolation"`
	MaxAttempts   int     `json:"max_attempts" yaml:"max_attempts"`
	Seed          uint64  `json:"seed" yaml:"seed"`
}

// VisionConfig holds configuration for scoring labels against lidar returns
type VisionConfig struct {
	Threshold int     `json:"threshold" yaml:"threshold"`
	Bright    bool    `json:"bright" yaml:"bright"`
	Band      float64 `json:"band" yaml:"band"`
}

// OutputConfig holds configuration for exported inspection images
type OutputConfig struct {
	Dir     string `json:"dir" yaml:"dir"`
	Format  string `json:"format" yaml:"format"`
	Quality int    `json:"quality" yaml:"quality"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Geometry: GeometryConfig{
			RawSize:     540,
			CropFactorX: 0.17,
			DesiredSize: 224,
			MaxSlope:    1e4,
			Mode:        "roi",
			Channel:     "luma",
			Filter:      "linear",
		},
		Calibration: CalibrationConfig{
			W:  Interval{Min: -0.58, Max: 0.58},
			Q1: Interval{Min: 50.52, Max: 76.89},
			Q2: Interval{Min: 147.24, Max: 170.66},
		},
		Dataset: DatasetConfig{
			CSVPath:  "./data/labels.csv",
			ImageDir: "./data/images",
			Variant:  "full",
		},
		Augment: AugmentConfig{
			AngleMin:      -20,
			AngleMax:      20,
			AngleStep:     2,
			Fraction:      0.2,
			Interpolation: "bilinear",
			MaxAttempts:   1,
			Seed:          1,
		},
		Vision: VisionConfig{
			Threshold: 128,
			Band:      3,
		},
		Output: OutputConfig{
			Dir:     "./output",
			Format:  "png",
			Quality: 90,
		},
	}
}

// isYAML reports whether filename should be read as YAML
func isYAML(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFromFile loads configuration from a JSON or YAML file. Fields missing
// from the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if isYAML(filename) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON or YAML file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(filename) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", types.ErrConfiguration, fmt.Sprintf(format, args...))
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	g := c.Geometry
	if g.DesiredSize < 1 {
		return invalid("geometry.desired_size must be positive")
	}

	if g.CropFactorX < 0 || g.CropFactorX >= 0.5 {
		return invalid("geometry.crop_factor_x must be in [0, 0.5)")
	}

	if g.RawSize < 1 {
		return invalid("geometry.raw_size must be positive")
	}

	if g.MaxSlope <= 0 {
		return invalid("geometry.max_slope must be positive")
	}

	for name, iv := range map[string]Interval{"w": c.Calibration.W, "q1": c.Calibration.Q1, "q2": c.Calibration.Q2} {
		if !(iv.Max > iv.Min) {
			return invalid("calibration.%s has zero or negative width", name)
		}
	}

	if _, ok := types.ParseVariant(c.Dataset.Variant); !ok {
		return invalid("dataset.variant must be full or reduced, got %q", c.Dataset.Variant)
	}

	a := c.Augment
	if a.AngleStep <= 0 || a.AngleMax <= a.AngleMin {
		return invalid("augment angles must satisfy angle_min < angle_max and angle_step > 0")
	}

	if a.Fraction < 0 || a.Fraction > 1 {
		return invalid("augment.fraction must be between 0 and 1")
	}

	if a.MaxAttempts < 1 {
		return invalid("augment.max_attempts must be at least 1")
	}

	if c.Vision.Threshold < 0 || c.Vision.Threshold > 255 {
		return invalid("vision.threshold must be between 0 and 255")
	}

	if c.Vision.Band <= 0 {
		return invalid("vision.band must be positive")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return invalid("output.quality must be between 1 and 100")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "lanefit", "config.json")
}
