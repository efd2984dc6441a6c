// Package demand converts best-seller ranks into sales estimates and
// classifies forecast volumes into coarse demand levels.
package demand

import (
	"strconv"
	"strings"
)

// Level is a coarse demand classification.
type Level string

const (
	LevelHigh   Level = "HIGH"
	LevelMedium Level = "MEDIUM"
	LevelLow    Level = "LOW"
)

// Tier maps ranks strictly below MaxRank to an estimated monthly sales volume.
type Tier struct {
	MaxRank int     `yaml:"max_rank" validate:"gt=0"`
	Sales   float64 `yaml:"sales" validate:"gte=0"`
}

// Tiers holds the rank→sales table and the level thresholds.
type Tiers struct {
	Ranks         []Tier  `yaml:"ranks" validate:"dive"`
	Fallback      float64 `yaml:"fallback" default:"100"`
	HighAtLeast   float64 `yaml:"high_at_least" default:"800"`
	MediumAtLeast float64 `yaml:"medium_at_least" default:"300"`
}

// DefaultTiers returns the marketplace rank table used by the pipeline.
func DefaultTiers() Tiers {
	return Tiers{
		Ranks: []Tier{
			{MaxRank: 500, Sales: 1000},
			{MaxRank: 1000, Sales: 500},
			{MaxRank: 2000, Sales: 250},
		},
		Fallback:      100,
		HighAtLeast:   800,
		MediumAtLeast: 300,
	}
}

// ParseRank extracts the digits of a rank string such as "#1,234 in Kitchen".
// ok is false when the string carries no digits.
func ParseRank(s string) (rank int, ok bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

// EstimateSales maps a rank to the first tier it falls under. Ranks beyond
// every tier get the fallback volume.
func (t Tiers) EstimateSales(rank int) float64 {
	for _, tier := range t.Ranks {
		if rank < tier.MaxRank {
			return tier.Sales
		}
	}
	return t.Fallback
}

// Classify returns the demand level of a sales volume.
func (t Tiers) Classify(sales float64) Level {
	switch {
	case sales >= t.HighAtLeast:
		return LevelHigh
	case sales >= t.MediumAtLeast:
		return LevelMedium
	default:
		return LevelLow
	}
}

// EstimateSales uses DefaultTiers.
func EstimateSales(rank int) float64 {
	return DefaultTiers().EstimateSales(rank)
}

// Classify uses DefaultTiers.
func Classify(sales float64) Level {
	return DefaultTiers().Classify(sales)
}
