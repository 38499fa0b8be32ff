// Package config holds the settings of a simulation run.  Settings are read by
// viper from a settings file (YAML, TOML or INI, one section per group below)
// and from command line flags, then checked with Validate.
package config

import (
	"fmt"
	"math"
	"runtime"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/readsim/encoding/fastq"
	"github.com/grailbio/readsim/quality"
	"github.com/grailbio/readsim/sonication"
	"github.com/spf13/viper"
)

// General settings shared by every source.
type General struct {
	// number of reads (single-end) or read pairs (paired-end) to generate
	ReadNum int `mapstructure:"read_num"`
	// length of every read
	ReadLen int `mapstructure:"read_len"`
	// probability that a base of a read is substituted
	MutFreq float64 `mapstructure:"mut_freq"`
	// accept soft-masked (lowercase) bases in reads
	Repeats bool `mapstructure:"repeats"`
	// accept IUPAC ambiguity codes in reads
	Ambiguous bool `mapstructure:"ambiguous"`
	// write the fragment length and junction coverage plots
	Graph bool `mapstructure:"graph"`
	// write the sampling report
	Report bool `mapstructure:"report"`
}

// Frequency is the share of ReadNum drawn from each source.  The four values
// sum to one.
type Frequency struct {
	Host  float64 `mapstructure:"freq_host"`
	Virus float64 `mapstructure:"freq_virus"`
	TJun  float64 `mapstructure:"freq_tjun"`
	FJun  float64 `mapstructure:"freq_fjun"`
}

// Junction configures the two junction pools.
type Junction struct {
	// minimum number of bases a read covers on each side of a breakpoint
	MinChimeric int `mapstructure:"min_chimeric"`
	// mean number of reads drawn per true junction
	SampTJun float64 `mapstructure:"samp_tjun"`
	// mean number of reads drawn per false junction
	SampFJun float64 `mapstructure:"samp_fjun"`
}

// Sonication configures the fragment length distribution of paired-end runs.
type Sonication struct {
	Min       int     `mapstructure:"sonic_min"`
	Mode      int     `mapstructure:"sonic_mode"`
	Max       int     `mapstructure:"sonic_max"`
	Certainty float64 `mapstructure:"sonic_certainty"`
}

// Quality configures base qualities.
type Quality struct {
	// one of fastq-sanger, fastq-solexa, fastq-illumina
	Scale string `mapstructure:"qual_scale"`
	// one of very-good, good, medium, bad, very-bad
	Range string `mapstructure:"qual_range"`
}

// Config is the root of the settings.  The top-level fields usually come from
// the command line.
type Config struct {
	// FASTA path of the host genome
	Host string `mapstructure:"host"`
	// FASTA path of the virus or vector genome
	Virus string `mapstructure:"virus"`
	// prefix of every output file
	Output string `mapstructure:"output"`
	// generate read pairs instead of single reads
	Pair bool `mapstructure:"pair"`
	// gzip the FASTQ output
	Gzip bool `mapstructure:"gzip"`
	// seed of the random generators; 0 picks one from the clock
	Seed uint64 `mapstructure:"seed"`
	// number of reads generated concurrently
	Parallelism int `mapstructure:"parallelism"`

	General    General    `mapstructure:"general"`
	Frequency  Frequency  `mapstructure:"frequency"`
	Junction   Junction   `mapstructure:"junction"`
	Sonication Sonication `mapstructure:"sonication"`
	Quality    Quality    `mapstructure:"quality"`
}

// SetDefaults registers the default value of every setting.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", "readsim")
	v.SetDefault("gzip", true)
	v.SetDefault("parallelism", runtime.NumCPU())

	v.SetDefault("general.read_num", 10000)
	v.SetDefault("general.read_len", 150)
	v.SetDefault("general.mut_freq", 0.001)
	v.SetDefault("general.repeats", true)
	v.SetDefault("general.ambiguous", false)
	v.SetDefault("general.report", true)

	v.SetDefault("frequency.freq_host", 0.25)
	v.SetDefault("frequency.freq_virus", 0.25)
	v.SetDefault("frequency.freq_tjun", 0.25)
	v.SetDefault("frequency.freq_fjun", 0.25)

	v.SetDefault("junction.min_chimeric", 25)
	v.SetDefault("junction.samp_tjun", 5)
	v.SetDefault("junction.samp_fjun", 5)

	v.SetDefault("sonication.sonic_min", 200)
	v.SetDefault("sonication.sonic_mode", 400)
	v.SetDefault("sonication.sonic_max", 1000)
	v.SetDefault("sonication.sonic_certainty", 10)

	v.SetDefault("quality.qual_scale", fastq.Sanger.String())
	v.SetDefault("quality.qual_range", quality.Good.String())
}

// Load reads the settings file named by the "settings" key, if any, and
// decodes every setting of v.  A parallelism of 0 means one worker per CPU.
func Load(v *viper.Viper) (*Config, error) {
	if path := v.GetString("settings"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.E(errors.Invalid, err, "read settings", path)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.E(errors.Invalid, err, "decode settings")
	}
	if c.Parallelism == 0 {
		c.Parallelism = runtime.NumCPU()
	}
	return &c, nil
}

func invalid(format string, args ...interface{}) error {
	return errors.E(errors.Invalid, fmt.Sprintf(format, args...))
}

func inUnit(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return invalid("%s must be in [0,1], got %v", name, v)
	}
	return nil
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if c.Host == "" || c.Virus == "" {
		return invalid("host and virus genome paths are required")
	}
	if c.Output == "" {
		return invalid("output basename is required")
	}
	if c.Parallelism < 1 {
		return invalid("parallelism must be at least 1, got %d", c.Parallelism)
	}
	g := c.General
	if g.ReadNum < 1 {
		return invalid("read_num must be at least 1, got %d", g.ReadNum)
	}
	if g.ReadLen < 1 {
		return invalid("read_len must be at least 1, got %d", g.ReadLen)
	}
	if err := inUnit("mut_freq", g.MutFreq); err != nil {
		return err
	}
	f := c.Frequency
	for _, kv := range []struct {
		name string
		v    float64
	}{{"freq_host", f.Host}, {"freq_virus", f.Virus}, {"freq_tjun", f.TJun}, {"freq_fjun", f.FJun}} {
		if err := inUnit(kv.name, kv.v); err != nil {
			return err
		}
	}
	if sum := f.Host + f.Virus + f.TJun + f.FJun; math.Abs(sum-1) > 1e-9 {
		return invalid("the read frequencies sum to %v instead of 1", sum)
	}
	j := c.Junction
	maxChimeric := g.ReadLen / 2
	if c.Pair {
		maxChimeric = g.ReadLen
	}
	if j.MinChimeric < 0 || j.MinChimeric > maxChimeric {
		return invalid("min_chimeric must be in [0,%d], got %d", maxChimeric, j.MinChimeric)
	}
	if !(j.SampTJun > 0) || !(j.SampFJun > 0) {
		return invalid("samp_tjun and samp_fjun must be positive, got %v and %v", j.SampTJun, j.SampFJun)
	}
	if c.Pair {
		s := c.Sonication
		if s.Min < g.ReadLen+j.MinChimeric {
			return invalid("sonic_min must be at least read_len + min_chimeric = %d, got %d", g.ReadLen+j.MinChimeric, s.Min)
		}
		if _, err := sonication.New(s.Min, s.Mode, s.Max, s.Certainty); err != nil {
			return err
		}
	}
	if _, err := fastq.ParseScale(c.Quality.Scale); err != nil {
		return err
	}
	if _, err := quality.ParseTier(c.Quality.Range); err != nil {
		return err
	}
	return nil
}

// Counts is the number of fragments drawn from each source.
type Counts struct {
	Host, Virus, TJun, FJun int
}

// ReadCounts splits ReadNum between the sources.  Shares are truncated, so
// the total may fall short of ReadNum by a few reads.
func (c *Config) ReadCounts() Counts {
	n := float64(c.General.ReadNum)
	return Counts{
		Host:  int(c.Frequency.Host * n),
		Virus: int(c.Frequency.Virus * n),
		TJun:  int(c.Frequency.TJun * n),
		FJun:  int(c.Frequency.FJun * n),
	}
}

// UniqueJunctions is the size of a junction pool sampled nread times with
// samp reads per junction on average.  A pool that is sampled at all holds
// at least one junction.
func UniqueJunctions(nread int, samp float64) int {
	if nread == 0 {
		return 0
	}
	return max(1, int(float64(nread)/samp))
}

// JunctionHalfLength is the number of bases taken from each side of a
// junction: the longest fragment for paired-end runs, a read otherwise.
func (c *Config) JunctionHalfLength() int {
	if c.Pair {
		return c.Sonication.Max
	}
	return c.General.ReadLen
}

// String renders the settings for the log.
func (c *Config) String() string {
	mode := "single-end"
	if c.Pair {
		mode = "paired-end"
	}
	return fmt.Sprintf("%s, %d reads of %d bases, host=%s virus=%s output=%s seed=%s",
		mode, c.General.ReadNum, c.General.ReadLen, c.Host, c.Virus, c.Output, strconv.FormatUint(c.Seed, 10))
}
