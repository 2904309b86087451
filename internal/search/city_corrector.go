package search

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"github.com/address-normalizer/app/models"
	"github.com/address-normalizer/internal/gazetteer"
	"github.com/address-normalizer/internal/normalizer"
)

// Default acceptance thresholds; a match must score strictly above them.
const (
	DefaultStateThreshold  = 60.0
	DefaultGlobalThreshold = 50.0
)

// fallbackStates resolves full names missing from the dataset's name table.
var fallbackStates = map[string]string{
	"CALIFORNIA": "CA",
	"TEXAS":      "TX",
	"NEW YORK":   "NY",
}

// CorrectorConfig tunes the city corrector.
type CorrectorConfig struct {
	StateThreshold  float64
	GlobalThreshold float64
}

// CityCorrector snaps a parsed city name onto the closest gazetteer city.
type CityCorrector struct {
	gaz    *gazetteer.Gazetteer
	cfg    CorrectorConfig
	logger *zap.Logger
}

// NewCityCorrector builds a corrector over gaz. Zero thresholds take the
// defaults.
func NewCityCorrector(gaz *gazetteer.Gazetteer, cfg CorrectorConfig, logger *zap.Logger) *CityCorrector {
	if cfg.StateThreshold <= 0 {
		cfg.StateThreshold = DefaultStateThreshold
	}
	if cfg.GlobalThreshold <= 0 {
		cfg.GlobalThreshold = DefaultGlobalThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CityCorrector{gaz: gaz, cfg: cfg, logger: logger}
}

// ResolveState maps a state code or full state name to a code known to the
// gazetteer, or "" when it cannot.
func (c *CityCorrector) ResolveState(state string) string {
	s := strings.ToUpper(strings.TrimSpace(state))
	if s == "" {
		return ""
	}
	if c.gaz.HasState(s) {
		return s
	}
	if code, ok := c.gaz.StateCode(s); ok {
		return code
	}
	if code, ok := fallbackStates[s]; ok && c.gaz.HasState(code) {
		return code
	}
	return ""
}

// Correct returns the gazetteer spelling of the best-matching city and its
// score, or (city, 0) when nothing clears the thresholds. Cities of the
// resolved state are tried first, then every city.
func (c *CityCorrector) Correct(city, state string) (string, float64) {
	key := normalizer.FoldKey(city)
	if key == "" {
		return city, 0
	}

	if code := c.ResolveState(state); code != "" {
		if m, score := best(key, c.gaz.Cities(code)); score > c.cfg.StateThreshold {
			c.logger.Debug("city corrected within state",
				zap.String("city", city), zap.String("match", m.Name),
				zap.String("state", code), zap.Float64("score", score))
			return m.Name, score
		}
	}

	if m, score := best(key, c.gaz.AllCities()); score > c.cfg.GlobalThreshold {
		c.logger.Debug("city corrected globally",
			zap.String("city", city), zap.String("match", m.Name),
			zap.String("state", m.State), zap.Float64("score", score))
		return m.Name, score
	}

	return city, 0
}

// Suggest lists the k best-scoring cities for a partial name, restricted to
// the state when it resolves.
func (c *CityCorrector) Suggest(city, state string, k int) []models.CityMatch {
	key := normalizer.FoldKey(city)
	if key == "" || k <= 0 {
		return nil
	}

	pool := c.gaz.AllCities()
	if code := c.ResolveState(state); code != "" {
		pool = c.gaz.Cities(code)
	}

	type ranked struct {
		models.CityMatch
		dist int
	}
	var hits []ranked
	for _, cand := range pool {
		if s := PartialRatio(key, cand.Key); s > 0 {
			hits = append(hits, ranked{
				CityMatch: models.CityMatch{City: cand.Name, State: cand.State, Score: s},
				dist:      levenshtein.ComputeDistance(key, cand.Key),
			})
		}
	}
	// equal partial scores prefer the closer whole name, then gazetteer order
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].dist < hits[j].dist
	})

	matches := make([]models.CityMatch, 0, len(hits))
	for _, h := range hits {
		matches = append(matches, h.CityMatch)
	}
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// best returns the first highest-scoring candidate.
func best(key string, cities []gazetteer.City) (gazetteer.City, float64) {
	var (
		top   gazetteer.City
		score float64
	)
	for _, cand := range cities {
		if s := PartialRatio(key, cand.Key); s > score {
			top, score = cand, s
			if score == 100 {
				break
			}
		}
	}
	return top, score
}
