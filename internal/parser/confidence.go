package parser

import "github.com/address-normalizer/app/models"

// Field weights; a complete record sums to 10.
const (
	weightStreet  = 3
	weightCity    = 2
	weightState   = 2
	weightZip     = 2
	weightCountry = 1

	minScore = 1
	maxScore = 10
)

// Score rates a parsed record from 1 to 10 by which fields are present,
// minus a penalty for a weak city match: 2 below 60, 1 below 80.
func Score(p models.ParsedAddress, cityScore float64) int {
	score := 0
	if p.Street != "" {
		score += weightStreet
	}
	if p.City != "" {
		score += weightCity
	}
	if p.State != "" {
		score += weightState
	}
	if p.Zip != "" {
		score += weightZip
	}
	if p.Country != "" {
		score += weightCountry
	}

	switch {
	case cityScore < 60:
		score -= 2
	case cityScore < 80:
		score--
	}

	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
