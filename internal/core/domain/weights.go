package domain

import (
	"fmt"
	"strconv"
)

// Rand is the source of randomness used by Draw. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	IntN(n int) int
}

// WeightedLocationSet is the weight table of one game in one guild. The cached
// total always equals the sum of the entries.
type WeightedLocationSet struct {
	weights   []int
	total     int
	maxWeight int
}

func NewWeightedLocationSet(defaults []int, maxWeight int) *WeightedLocationSet {
	s := &WeightedLocationSet{maxWeight: maxWeight}
	s.ResetToDefaults(defaults)
	return s
}

// UnsetWeight marks a stored entry with no value.
const UnsetWeight = -1

// RestoreWeightedLocationSet rebuilds a set from a persisted table. Entries
// beyond the catalog are dropped, missing or negative ones take the default,
// values above maxWeight are clamped, and a table that sums to zero falls back
// to defaults.
func RestoreWeightedLocationSet(defaults, stored []int, maxWeight int) *WeightedLocationSet {
	weights := make([]int, len(defaults))
	total := 0
	for i := range weights {
		w := defaults[i]
		if i < len(stored) && stored[i] >= 0 {
			w = min(stored[i], maxWeight)
		}
		weights[i] = w
		total += w
	}
	if total < 1 {
		return NewWeightedLocationSet(defaults, maxWeight)
	}
	return &WeightedLocationSet{weights: weights, total: total, maxWeight: maxWeight}
}

func (s *WeightedLocationSet) Len() int {
	return len(s.weights)
}

func (s *WeightedLocationSet) Total() int {
	return s.total
}

func (s *WeightedLocationSet) Weight(index int) int {
	if index < 0 || index >= len(s.weights) {
		return 0
	}
	return s.weights[index]
}

// Weights returns a copy of the table in index order.
func (s *WeightedLocationSet) Weights() []int {
	out := make([]int, len(s.weights))
	copy(out, s.weights)
	return out
}

// SetWeight changes a single entry and returns the new total. The set is left
// untouched on error.
func (s *WeightedLocationSet) SetWeight(index, weight int) (int, error) {
	if index < 0 || index >= len(s.weights) {
		return s.total, fmt.Errorf("%w: location %d not in [0, %d]", ErrOutOfRange, index, len(s.weights)-1)
	}
	if weight < 0 || weight > s.maxWeight {
		return s.total, fmt.Errorf("%w: weight %d not in [0, %d]", ErrOutOfRange, weight, s.maxWeight)
	}

	current := s.weights[index]
	if weight == current {
		return s.total, ErrNoOp
	}

	total := s.total - current + weight
	if total < 1 {
		return s.total, ErrDegenerateTable
	}

	s.weights[index] = weight
	s.total = total
	return total, nil
}

// Draw picks an index with probability proportional to its weight. Entries
// with weight 0 are never returned.
func (s *WeightedLocationSet) Draw(rng Rand) (int, error) {
	if s.total <= 0 {
		return 0, ErrEmptyTable
	}

	target := rng.IntN(s.total)
	cumulative := 0
	for i, w := range s.weights {
		cumulative += w
		if cumulative > target {
			return i, nil
		}
	}
	return 0, ErrEmptyTable
}

// ChancePercent is weight/total*100, rounded to two significant digits unless
// it is exactly 100.
func (s *WeightedLocationSet) ChancePercent(index int) float64 {
	if s.total <= 0 || index < 0 || index >= len(s.weights) {
		return 0
	}
	return roundChance(float64(s.weights[index]) / float64(s.total) * 100)
}

func (s *WeightedLocationSet) ResetToDefaults(defaults []int) {
	s.weights = make([]int, len(defaults))
	copy(s.weights, defaults)
	s.total = 0
	for _, w := range s.weights {
		s.total += w
	}
}

func (s *WeightedLocationSet) clone() *WeightedLocationSet {
	return &WeightedLocationSet{weights: s.Weights(), total: s.total, maxWeight: s.maxWeight}
}

func roundChance(p float64) float64 {
	if p == 100 || p == 0 {
		return p
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(p, 'g', 2, 64), 64)
	if err != nil {
		return p
	}
	return rounded
}
