package domain

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

type Location struct {
	Name   string `yaml:"name"`
	Weight int    `yaml:"weight"`
}

// Catalog is the fixed list of drop locations per game together with the
// default weight table every new or reset guild is seeded from.
type Catalog struct {
	MaxWeight int                 `yaml:"max_weight"`
	Games     map[Game][]Location `yaml:"games"`
}

// LoadCatalog reads the catalog from path, or the embedded one when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := embeddedCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		data = b
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) Validate() error {
	var errs []error

	if c.MaxWeight < 1 {
		errs = append(errs, fmt.Errorf("max_weight must be at least 1, got %d", c.MaxWeight))
	}

	for _, g := range Games {
		locs := c.Games[g]
		if len(locs) == 0 {
			errs = append(errs, fmt.Errorf("game %s has no locations", g))
			continue
		}
		total := 0
		for i, loc := range locs {
			if loc.Name == "" {
				errs = append(errs, fmt.Errorf("game %s location %d has no name", g, i))
			}
			if loc.Weight < 0 || loc.Weight > c.MaxWeight {
				errs = append(errs, fmt.Errorf("game %s location %q weight %d outside [0, %d]", g, loc.Name, loc.Weight, c.MaxWeight))
			}
			total += loc.Weight
		}
		if total < 1 {
			errs = append(errs, fmt.Errorf("game %s default weights sum to %d", g, total))
		}
	}

	return errors.Join(errs...)
}

func (c *Catalog) Locations(game Game) []Location {
	return c.Games[game]
}

// DefaultWeights returns a fresh copy of the default weight table for game.
func (c *Catalog) DefaultWeights(game Game) []int {
	locs := c.Games[game]
	weights := make([]int, len(locs))
	for i, loc := range locs {
		weights[i] = loc.Weight
	}
	return weights
}

func (c *Catalog) LocationName(game Game, index int) string {
	locs := c.Games[game]
	if index < 0 || index >= len(locs) {
		return ""
	}
	return locs[index].Name
}

// Lookup resolves a location argument given either as a zero-based index or
// as a location name, compared case-insensitively.
func (c *Catalog) Lookup(game Game, arg string) (int, error) {
	locs := c.Games[game]
	arg = strings.TrimSpace(arg)

	if i, err := strconv.Atoi(arg); err == nil {
		if i < 0 || i >= len(locs) {
			return 0, fmt.Errorf("%w: index %d not in [0, %d]", ErrOutOfRange, i, len(locs)-1)
		}
		return i, nil
	}

	fold := cases.Fold()
	want := fold.String(arg)
	for i, loc := range locs {
		if fold.String(loc.Name) == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLocation, arg)
}
