package parser

import (
	"strings"

	"go.uber.org/zap"

	"github.com/address-normalizer/app/models"
	"github.com/address-normalizer/internal/external"
	"github.com/address-normalizer/internal/normalizer"
)

// FailureMessage is reported for an address that yields no fields at all.
const FailureMessage = "Address parsing failed - no valid components found"

// CityCorrector snaps a parsed city onto reference data.
type CityCorrector interface {
	Correct(city, state string) (string, float64)
}

// AddressParser runs the per-address pipeline: clean, tag, route, correct
// the city and score. It holds no mutable state.
type AddressParser struct {
	cleaner   *normalizer.Cleaner
	tagger    external.Tagger
	corrector CityCorrector
	logger    *zap.Logger
}

// NewAddressParser wires the pipeline. A nil corrector skips city
// correction and every city scores 0.
func NewAddressParser(cleaner *normalizer.Cleaner, tagger external.Tagger, corrector CityCorrector, logger *zap.Logger) *AddressParser {
	if tagger == nil {
		tagger = external.NullTagger{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AddressParser{
		cleaner:   cleaner,
		tagger:    tagger,
		corrector: corrector,
		logger:    logger,
	}
}

// ParseAddress normalizes one raw address. It never fails: an address with
// no usable parts comes back with an empty Parsed record, see Failed.
func (ap *AddressParser) ParseAddress(raw string) *models.ParseOutcome {
	raw = strings.TrimSpace(raw)
	cleaned := ap.cleaner.Clean(raw)

	parsed := Structure(ap.tagger.Tag(cleaned))
	route := Route(parsed.Country)
	parsed = ApplyRoute(route, parsed, cleaned)

	var cityScore float64
	if route == models.RouteDomestic && parsed.City != "" && ap.corrector != nil {
		parsed.City, cityScore = ap.corrector.Correct(parsed.City, parsed.State)
	}

	outcome := &models.ParseOutcome{
		Raw:               raw,
		Cleaned:           cleaned,
		Parsed:            parsed,
		CityConfidence:    cityScore,
		OverallConfidence: Score(parsed, cityScore),
		Route:             route,
	}

	ap.logger.Debug("parsed address",
		zap.String("raw", raw),
		zap.String("route", route),
		zap.Float64("city_confidence", cityScore),
		zap.Int("overall_confidence", outcome.OverallConfidence))

	return outcome
}

// Failed reports a total parse failure.
func Failed(o *models.ParseOutcome) bool {
	return o == nil || o.Parsed.IsEmpty()
}

// Structure maps tagger components onto the five-field record. Street
// pieces and city pieces are joined with a space in tagger order; labels
// outside the table are dropped.
func Structure(components []external.Component) models.ParsedAddress {
	var street, city, state, zip, country []string
	for _, c := range components {
		v := strings.TrimSpace(c.Value)
		if v == "" {
			continue
		}
		switch c.Label {
		case "house_number", "road", "unit":
			street = append(street, v)
		case "suburb", "city":
			city = append(city, v)
		case "state":
			state = append(state, v)
		case "postcode":
			zip = append(zip, v)
		case "country":
			country = append(country, v)
		}
	}
	return models.ParsedAddress{
		Street:  strings.Join(street, " "),
		City:    strings.Join(city, " "),
		State:   strings.Join(state, " "),
		Zip:     strings.Join(zip, " "),
		Country: strings.Join(country, " "),
	}
}
