package campus

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/campus/distance"
	"github.com/hupe1980/campus/internal/precision"
)

// EnvPrefix is the prefix of environment overrides applied by LoadConfig,
// e.g. CAMPUS_POSTING_LIMIT.
const EnvPrefix = "CAMPUS"

// Config holds the construction parameters of an Index.
type Config struct {
	// Dimension is the length of every vector.
	Dimension int `yaml:"dimension" envconfig:"DIMENSION"`

	// PostingLimit is the maximum number of vectors per cluster before a
	// split is forced.
	PostingLimit int `yaml:"posting_limit" envconfig:"POSTING_LIMIT"`

	// ConnectionLimit is the maximum in- and out-degree of a cluster.
	ConnectionLimit int `yaml:"connection_limit" envconfig:"CONNECTION_LIMIT"`

	// Metric names the distance: "l2" (squared Euclidean) or "angular".
	Metric string `yaml:"metric" envconfig:"METRIC"`

	// ElementSize is the stored byte width of a vector component: 4 keeps
	// float32, 2 rounds every component to float16 precision.
	ElementSize int `yaml:"element_size" envconfig:"ELEMENT_SIZE"`

	// DefaultNodeNum and DefaultEF are applied by SearchBuilder when the
	// cluster count or the candidate frontier is left unset.
	DefaultNodeNum int `yaml:"default_node_num" envconfig:"DEFAULT_NODE_NUM"`
	DefaultEF      int `yaml:"default_ef" envconfig:"DEFAULT_EF"`
}

// DefaultConfig returns a configuration for the given dimension with
// defaults for everything else.
func DefaultConfig(dimension int) Config {
	return Config{
		Dimension:       dimension,
		PostingLimit:    64,
		ConnectionLimit: 16,
		Metric:          "l2",
		ElementSize:     4,
		DefaultNodeNum:  8,
		DefaultEF:       32,
	}
}

// Validate checks the configuration. Errors wrap ErrInvalidConfig, and the
// dimension and metric failures are typed.
func (c Config) Validate() error {
	if c.Dimension <= 0 {
		return &ErrInvalidDimension{Dimension: c.Dimension, cause: ErrInvalidConfig}
	}
	if _, err := distance.ParseMetric(c.Metric); err != nil {
		return &ErrInvalidDistanceType{DistanceType: c.Metric, cause: fmt.Errorf("%w: %w", ErrInvalidConfig, err)}
	}

	var errs []error
	if c.PostingLimit < 1 {
		errs = append(errs, fmt.Errorf("posting_limit must be at least 1, got %d", c.PostingLimit))
	}
	if c.ConnectionLimit < 1 {
		errs = append(errs, fmt.Errorf("connection_limit must be at least 1, got %d", c.ConnectionLimit))
	}
	if _, err := precision.Parse(c.ElementSize); err != nil {
		errs = append(errs, err)
	}
	if c.DefaultNodeNum < 0 {
		errs = append(errs, fmt.Errorf("default_node_num must not be negative, got %d", c.DefaultNodeNum))
	}
	if c.DefaultEF < 0 {
		errs = append(errs, fmt.Errorf("default_ef must not be negative, got %d", c.DefaultEF))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// LoadConfig reads a YAML configuration file and applies CAMPUS_*
// environment overrides on top. A missing file is not an error: the
// defaults for dimension 0 are used, so the dimension must then come from
// the environment. The result is validated.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig(0)

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
