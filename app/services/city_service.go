package services

import (
	"strings"

	"go.uber.org/zap"

	"github.com/address-normalizer/app/models"
	"github.com/address-normalizer/internal/gazetteer"
	"github.com/address-normalizer/internal/search"
)

// CitySearch is the external city index (Meilisearch in production).
type CitySearch interface {
	BuildIndex() error
	Seed(gaz *gazetteer.Gazetteer) (int, error)
	Suggest(q, state string, k int) ([]models.CityMatch, error)
}

// CityService answers city suggestions from the search index when one is
// configured and from the in-process corrector otherwise.
type CityService struct {
	corrector *search.CityCorrector
	searcher  CitySearch
	logger    *zap.Logger
}

// NewCityService wires suggestions. searcher may be nil.
func NewCityService(corrector *search.CityCorrector, searcher CitySearch, logger *zap.Logger) *CityService {
	return &CityService{corrector: corrector, searcher: searcher, logger: logger}
}

// Suggest returns up to k cities resembling q, best first.
func (cs *CityService) Suggest(q, state string, k int) []models.CityMatch {
	q = strings.TrimSpace(q)
	if q == "" || k <= 0 {
		return []models.CityMatch{}
	}

	if cs.searcher != nil {
		matches, err := cs.searcher.Suggest(q, cs.corrector.ResolveState(state), k)
		if err == nil {
			return matches
		}
		cs.logger.Warn("city search unavailable, using gazetteer", zap.Error(err))
	}

	matches := cs.corrector.Suggest(q, state, k)
	if matches == nil {
		return []models.CityMatch{}
	}
	return matches
}
