// SPDX-License-Identifier: MIT

// Package config loads run settings from LOADPLACE_* environment variables,
// optionally seeded from a .env file. Unset variables take their defaults;
// malformed ones fail with an error naming the variable.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the resolved run settings; build it with Load.
type Config struct {
	// Network
	CasePath string // YAML case file; empty selects the built-in IEEE 9-bus case

	// Study
	LoadMW     float64
	LoadMVAr   float64
	Candidates []int // empty = every non-slack bus

	// CandidatesSet is true when LOADPLACE_CANDIDATES was given explicitly.
	CandidatesSet bool

	// Search
	Workers        int     // 0 = GOMAXPROCS
	Threshold      float64 // overload threshold, percent of rating
	CheckCapacity  bool
	GenToleranceMW float64 // < 0 disables generator limit checks

	// Ranking
	ViolationPenalty float64
	ChangeWeight     float64
}

// GeneratorLimits reports whether generator limit checks are enabled.
func (c *Config) GeneratorLimits() bool {
	return c.GenToleranceMW >= 0
}

// LoadDotEnv loads variables from the given files (default ".env") without
// overriding ones already set. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: %w", err)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("config: load %v: %w", present, err)
	}

	return nil
}

// Load reads the LOADPLACE_* variables and validates them. Unset variables
// take their defaults; a malformed or out-of-range value yields an error
// naming the variable. Call LoadDotEnv first to seed the environment.
func Load() (*Config, error) {
	var p parser
	cfg := &Config{
		CasePath:   os.Getenv("LOADPLACE_CASE"),
		LoadMW:     p.float("LOADPLACE_LOAD_MW", 50),
		LoadMVAr:   p.float("LOADPLACE_LOAD_MVAR", 20),
		Candidates: p.intList("LOADPLACE_CANDIDATES", []int{4, 5, 6, 7, 8, 9}),

		Workers:        p.int("LOADPLACE_WORKERS", 0),
		Threshold:      p.float("LOADPLACE_THRESHOLD", 100),
		CheckCapacity:  p.bool("LOADPLACE_CHECK_CAPACITY", true),
		GenToleranceMW: p.float("LOADPLACE_GEN_TOLERANCE_MW", -1),

		ViolationPenalty: p.float("LOADPLACE_VIOLATION_PENALTY", 1000),
		ChangeWeight:     p.float("LOADPLACE_CHANGE_WEIGHT", 2),
	}
	if p.err != nil {
		return nil, p.err
	}
	cfg.CandidatesSet = os.Getenv("LOADPLACE_CANDIDATES") != ""

	if cfg.Workers < 0 {
		return nil, fmt.Errorf("LOADPLACE_WORKERS must be >= 0, got %d", cfg.Workers)
	}
	if cfg.Threshold <= 0 {
		return nil, fmt.Errorf("LOADPLACE_THRESHOLD must be > 0, got %v", cfg.Threshold)
	}
	if cfg.ViolationPenalty < 0 {
		return nil, fmt.Errorf("LOADPLACE_VIOLATION_PENALTY must be >= 0, got %v", cfg.ViolationPenalty)
	}
	if cfg.ChangeWeight < 0 {
		return nil, fmt.Errorf("LOADPLACE_CHANGE_WEIGHT must be >= 0, got %v", cfg.ChangeWeight)
	}

	return cfg, nil
}

// parser reads typed variables and keeps the first error.
type parser struct {
	err error
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%s: invalid value %q: %w", key, value, err)
	}
}

func (p *parser) float(key string, def float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		p.fail(key, value, err)
		return def
	}
	return f
}

func (p *parser) int(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		p.fail(key, value, err)
		return def
	}
	return i
}

func (p *parser) bool(key string, def bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		p.fail(key, value, err)
		return def
	}
	return b
}

func (p *parser) intList(key string, def []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	out, err := ParseIntList(value)
	if err != nil {
		p.fail(key, value, err)
		return def
	}
	return out
}

// ParseIntList parses a comma-separated list of integers. "all" and "*"
// yield an empty list.
func ParseIntList(value string) ([]int, error) {
	value = strings.TrimSpace(value)
	if value == "all" || value == "*" {
		return []int{}, nil
	}
	var out []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}
