package batch

import (
	"os"
	"runtime"
	"time"

	"github.com/2x3systems/hexpack/hexpack"
	"github.com/2x3systems/hexpack/report"
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config is a batch run description, normally read from a TOML file:
//
//	lattice_dir = "lattices"
//	lattices    = ["t6x10", "t12x10"]
//	molecules   = ["pentamer"]
//	deadline    = "10m"
//	heuristic   = true
//
//	[output]
//	driver = "fs"
//	root   = "out"
//	gzip   = true
type Config struct {
	LatticeDir    string   `toml:"lattice_dir"`
	Lattices      []string `toml:"lattices"`
	Molecules     []string `toml:"molecules"` // one root, or two of equal size
	Holes         int      `toml:"holes"`
	Deadline      Duration `toml:"deadline"`    // per lattice; zero means none
	MaxResults    int      `toml:"max_results"` // per lattice; zero means no limit
	MaxExpansions int      `toml:"max_expansions"`
	Heuristic     bool     `toml:"heuristic"`
	Symmetry      bool     `toml:"symmetry"` // read <lattice_dir>/<lattice>.sym and enumerate symmetric tilings only
	Workers       int      `toml:"workers"`  // defaults to the number of CPUs
	MetricsFile   string   `toml:"metrics_file"`
	Catalog       string   `toml:"catalog"` // catalog db path; empty means no catalog
	Output        Output   `toml:"output"`
}

// Output says where result documents go.
type Output struct {
	Driver    string `toml:"driver"` // "fs" (default), "s3" or "memory"
	Root      string `toml:"root"`
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	PathStyle bool   `toml:"path_style"`
	Gzip      bool   `toml:"gzip"`
}

// Duration is a time.Duration written as "90s", "10m", ...
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// LoadConfig reads a TOML config file.
func LoadConfig(pathname string) (*Config, error) {
	data, err := os.ReadFile(pathname)
	if err != nil {
		return nil, errors.Wrap(hexpack.ErrBadConfig, err.Error())
	}
	return ParseConfig(string(data))
}

// ParseConfig parses TOML config text, rejecting unknown keys, and fills in defaults.
func ParseConfig(data string) (*Config, error) {
	cfg := &Config{}
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, errors.Wrap(hexpack.ErrBadConfig, err.Error())
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Wrapf(hexpack.ErrBadConfig, "unknown key %q", undecoded[0].String())
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cfg and resolves zero-valued fields to their defaults.
func (cfg *Config) Validate() error {
	switch {
	case len(cfg.Lattices) == 0:
		return errors.Wrap(hexpack.ErrBadConfig, "no lattices given")
	case len(cfg.Molecules) < 1 || len(cfg.Molecules) > 2:
		return errors.Wrapf(hexpack.ErrBadConfig, "expected one or two molecules, got %d", len(cfg.Molecules))
	case cfg.Holes < 0 || cfg.MaxResults < 0 || cfg.MaxExpansions < 0 || cfg.Workers < 0 || cfg.Deadline.Duration < 0:
		return errors.Wrap(hexpack.ErrBadConfig, "negative limit")
	}

	if cfg.LatticeDir == "" {
		cfg.LatticeDir = "."
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.MaxExpansions == 0 {
		cfg.MaxExpansions = hexpack.DefaultMaxExpansions
	}
	if cfg.Output.Driver == "" {
		cfg.Output.Driver = string(report.DriverFilesystem)
	}
	return nil
}

// StoreOpts returns the report store options of cfg.Output.
func (out *Output) StoreOpts() report.StoreOpts {
	return report.StoreOpts{
		Driver:    report.Driver(out.Driver),
		Root:      out.Root,
		Bucket:    out.Bucket,
		Region:    out.Region,
		Endpoint:  out.Endpoint,
		PathStyle: out.PathStyle,
	}
}
