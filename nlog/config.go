package nlog

// config.go reduces the module's process-wide setup footprint using
// functional options, the same pattern the teacher engine used for its
// own NewEngine configuration.
// See: http://dave.cheney.net/2014/10/17/functional-options-for-friendly-apis

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nibrary/nibrary/nerr"
)

// Config contains process-wide attributes that can be set once, before
// any parallel section begins (spec.md §9's note on SH table
// reconfiguration applies equally to these).
type Config struct {
	MaxThreads    int    `yaml:"maxThreads"`   // 0 means derive from runtime.NumCPU()
	Verbosity     Level  `yaml:"verbosity"`    // progress/diagnostic gating
	Interpolation string `yaml:"interpolation"` // default image interpolation: nearest|linear|cubic
	SHOrder       int    `yaml:"shOrder"`      // default spherical-harmonics order
	SHAxisOrder   string `yaml:"shAxisOrder"`  // default axis convention, one of 48 signed permutations
	SHEvenOnly    bool   `yaml:"shEvenOnly"`   // restrict SH basis to even-degree terms
}

// configDefaults provides reasonable defaults so callers that never
// configure anything still get sane behaviour.
var configDefaults = Config{
	MaxThreads:    0,
	Verbosity:     Info,
	Interpolation: "linear",
	SHOrder:       8,
	SHAxisOrder:   "xyz",
	SHEvenOnly:    true,
}

// Opt defines an optional configuration override.
type Opt func(*Config)

// WithMaxThreads overrides the default worker count.
func WithMaxThreads(n int) Opt {
	return func(c *Config) {
		if n > 0 {
			c.MaxThreads = n
		}
	}
}

// WithVerbosity overrides the default verbosity level.
func WithVerbosity(l Level) Opt {
	return func(c *Config) { c.Verbosity = l }
}

// WithInterpolation overrides the default image interpolation method.
func WithInterpolation(method string) Opt {
	return func(c *Config) { c.Interpolation = method }
}

// WithSH overrides the default spherical-harmonics order/convention.
func WithSH(order int, axisOrder string, evenOnly bool) Opt {
	return func(c *Config) {
		if order >= 0 {
			c.SHOrder = order
		}
		if axisOrder != "" {
			c.SHAxisOrder = axisOrder
		}
		c.SHEvenOnly = evenOnly
	}
}

// NewConfig builds a Config from defaults plus the given overrides.
func NewConfig(opts ...Opt) Config {
	cfg := configDefaults
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// LoadConfig reads a YAML configuration file over top of the defaults,
// then applies opts. A missing field in the file keeps its default
// value rather than zeroing it.
func LoadConfig(path string, opts ...Opt) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, nerr.Wrap(nerr.FileError, "nlog.LoadConfig", path, err)
	}
	cfg := configDefaults
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, nerr.Wrap(nerr.FileError, "nlog.LoadConfig", "parsing "+path, err)
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg, nil
}
