// Package config holds run settings for the knucleotide command.
package config

import (
	"os"
	"slices"

	"github.com/oisee/knucleotide/pkg/nucleo"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid setting")

// Config describes which statistics to compute and how.
type Config struct {
	Workers     int      `toml:"workers"`     // Parallel workers (0 = NumCPU)
	Partitions  int      `toml:"partitions"`  // Regions per k (0 = Workers)
	Record      int      `toml:"record"`      // Target record ordinal, from 1
	ID          string   `toml:"id"`          // Target record ID, overrides Record
	Frequencies []int    `toml:"frequencies"` // k-values reported as frequency tables
	Literals    []string `toml:"literals"`    // k-mers reported as counts
	Progress    bool     `toml:"progress"`    // Show a progress bar on stderr
}

// Default returns the k-nucleotide benchmark settings.
func Default() Config {
	return Config{
		Record:      3,
		Frequencies: []int{1, 2},
		Literals:    []string{"GGT", "GGTA", "GGTATT", "GGTATTTTAATT", "GGTATTTTAATTTATAGT"},
	}
}

// Load reads a TOML file over the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges and literal alphabets.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return errors.Wrapf(ErrInvalid, "workers = %d", c.Workers)
	}
	if c.Partitions < 0 {
		return errors.Wrapf(ErrInvalid, "partitions = %d", c.Partitions)
	}
	if c.ID == "" && c.Record < 1 {
		return errors.Wrapf(ErrInvalid, "record = %d", c.Record)
	}
	for _, k := range c.Frequencies {
		if k < 1 || k > nucleo.MaxK {
			return errors.Wrapf(ErrInvalid, "frequency k = %d, valid range is [1-%d]", k, nucleo.MaxK)
		}
	}
	for _, lit := range c.Literals {
		if _, err := nucleo.KeyOf(lit); err != nil {
			return errors.Wrapf(ErrInvalid, "literal: %v", err)
		}
	}
	return nil
}

// KValues returns every window length the run must count: the frequency
// k-values and the literal lengths, ascending and without duplicates.
func (c Config) KValues() []int {
	ks := slices.Clone(c.Frequencies)
	for _, lit := range c.Literals {
		ks = append(ks, len(lit))
	}
	slices.Sort(ks)
	return slices.Compact(ks)
}
