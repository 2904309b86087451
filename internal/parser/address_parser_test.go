package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/address-normalizer/app/models"
	"github.com/address-normalizer/internal/external"
	"github.com/address-normalizer/internal/normalizer"
)

type stubCorrector struct {
	calls int
	city  string
	score float64
}

func (s *stubCorrector) Correct(city, state string) (string, float64) {
	s.calls++
	if s.city == "" {
		return city, s.score
	}
	return s.city, s.score
}

func fixedTagger(components ...external.Component) external.Tagger {
	return external.TaggerFunc(func(string) []external.Component {
		return components
	})
}

func TestStructure(t *testing.T) {
	got := Structure([]external.Component{
		{Value: "123", Label: "house_number"},
		{Value: "main st ", Label: "road"},
		{Value: "apt 4", Label: "unit"},
		{Value: "downtown", Label: "suburb"},
		{Value: "phoenix", Label: "city"},
		{Value: "az", Label: "state"},
		{Value: "85001", Label: "postcode"},
		{Value: "usa", Label: "country"},
		{Value: "acme corp", Label: "house"},
		{Value: "  ", Label: "road"},
	})

	assert.Equal(t, models.ParsedAddress{
		Street:  "123 main st apt 4",
		City:    "downtown phoenix",
		State:   "az",
		Zip:     "85001",
		Country: "usa",
	}, got)

	assert.True(t, Structure(nil).IsEmpty())
}

func TestRoute(t *testing.T) {
	testCases := []struct {
		country  string
		expected string
	}{
		{"", models.RouteDomestic},
		{"usa", models.RouteDomestic},
		{"US", models.RouteDomestic},
		{"United States", models.RouteDomestic},
		{"u.s.a.", models.RouteDomestic},
		{"U.S.", models.RouteDomestic},
		{"canada", models.RouteCanada},
		{"CANADA", models.RouteCanada},
		{"UK", models.RouteInternational},
		{"Deutschland", models.RouteInternational},
		{"United States of America", models.RouteInternational},
	}

	for _, tc := range testCases {
		t.Run(tc.country, func(t *testing.T) {
			assert.Equal(t, tc.expected, Route(tc.country))
		})
	}
}

func TestApplyRoute(t *testing.T) {
	t.Run("canada passes through untouched", func(t *testing.T) {
		in := models.ParsedAddress{Street: "456 rue principale", City: "montreal", State: "qc", Country: "canada"}
		assert.Equal(t, in, ApplyRoute(models.RouteCanada, in, "ignored"))
	})

	t.Run("international collapses into street", func(t *testing.T) {
		in := models.ParsedAddress{Street: "10 Downing Street", City: "London", Country: "UK"}
		got := ApplyRoute(models.RouteInternational, in, "10 Downing Street, London, UK")
		assert.Equal(t, models.ParsedAddress{Street: "10 Downing Street, London, UK", Country: "UK"}, got)
	})

	t.Run("domestic casing", func(t *testing.T) {
		in := models.ParsedAddress{Street: "1 main st", City: "new york", State: "ny", Country: "united states"}
		got := ApplyRoute(models.RouteDomestic, in, "")
		assert.Equal(t, models.ParsedAddress{Street: "1 main st", City: "New York", State: "NY", Country: "USA"}, got)
	})

	t.Run("domestic fallback only when empty", func(t *testing.T) {
		got := ApplyRoute(models.RouteDomestic, models.ParsedAddress{}, "100 Broadway Springfield il 62701")
		assert.Equal(t, models.ParsedAddress{Street: "100 Broadway", City: "Springfield", State: "IL", Zip: "62701"}, got)

		partial := models.ParsedAddress{Zip: "62701"}
		assert.Equal(t, partial, ApplyRoute(models.RouteDomestic, partial, "100 Broadway Springfield il 62701"))
	})
}

func TestFallback(t *testing.T) {
	got := Fallback("55 Elm Austin tx 73301-1234 USA")
	assert.Equal(t, models.ParsedAddress{
		Street:  "55 Elm",
		City:    "Austin",
		State:   "TX",
		Zip:     "73301-1234",
		Country: "USA",
	}, got)

	assert.True(t, Fallback("asdf1234").IsEmpty())
	assert.True(t, Fallback("123 Main St, Phoenix, AZ 85001").IsEmpty())
}

func TestScore(t *testing.T) {
	full := models.ParsedAddress{Street: "s", City: "c", State: "st", Zip: "z", Country: "USA"}

	testCases := []struct {
		name      string
		parsed    models.ParsedAddress
		cityScore float64
		expected  int
	}{
		{"full strong match", full, 100, 10},
		{"full at 80", full, 80, 10},
		{"full just under 80", full, 79.9, 9},
		{"full at 60", full, 60, 9},
		{"full weak match", full, 59, 8},
		{"street only", models.ParsedAddress{Street: "s"}, 0, 1},
		{"empty", models.ParsedAddress{}, 0, 1},
		{"no country", models.ParsedAddress{Street: "s", City: "c", State: "st", Zip: "z"}, 100, 9},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Score(tc.parsed, tc.cityScore))
		})
	}
}

func TestAddressParser_DomesticUsesCorrector(t *testing.T) {
	corrector := &stubCorrector{city: "Phoenix", score: 90}
	p := NewAddressParser(normalizer.MustNewCleaner(), fixedTagger(
		external.Component{Value: "123", Label: "house_number"},
		external.Component{Value: "Main St", Label: "road"},
		external.Component{Value: "phenix", Label: "city"},
		external.Component{Value: "az", Label: "state"},
		external.Component{Value: "85001", Label: "postcode"},
	), corrector, nil)

	out := p.ParseAddress("  123 Main St, Phenix, AZ 85001 ")
	require.False(t, Failed(out))
	assert.Equal(t, "123 Main St, Phenix, AZ 85001", out.Raw)
	assert.Equal(t, 1, corrector.calls)
	assert.Equal(t, models.ParsedAddress{Street: "123 Main St", City: "Phoenix", State: "AZ", Zip: "85001"}, out.Parsed)
	assert.Equal(t, 90.0, out.CityConfidence)
	assert.Equal(t, 9, out.OverallConfidence)
	assert.Equal(t, models.RouteDomestic, out.Route)
}

func TestAddressParser_NonDomesticSkipsCorrector(t *testing.T) {
	corrector := &stubCorrector{city: "Wrong", score: 100}

	canada := NewAddressParser(normalizer.MustNewCleaner(), fixedTagger(
		external.Component{Value: "montreal", Label: "city"},
		external.Component{Value: "canada", Label: "country"},
	), corrector, nil)
	out := canada.ParseAddress("Montreal, Canada")
	assert.Equal(t, "montreal", out.Parsed.City)
	assert.Zero(t, out.CityConfidence)

	intl := NewAddressParser(normalizer.MustNewCleaner(), fixedTagger(
		external.Component{Value: "London", Label: "city"},
		external.Component{Value: "UK", Label: "country"},
	), corrector, nil)
	out = intl.ParseAddress("London, UK")
	assert.Equal(t, "London, UK", out.Parsed.Street)
	assert.Empty(t, out.Parsed.City)

	assert.Zero(t, corrector.calls)
}

func TestAddressParser_NilCorrector(t *testing.T) {
	p := NewAddressParser(normalizer.MustNewCleaner(), fixedTagger(
		external.Component{Value: "1 Main St", Label: "road"},
		external.Component{Value: "springfield", Label: "city"},
	), nil, nil)

	out := p.ParseAddress("1 Main St, springfield")
	assert.Equal(t, "Springfield", out.Parsed.City)
	assert.Zero(t, out.CityConfidence)
	assert.Equal(t, 3, out.OverallConfidence)
}

func TestAddressParser_NoTaggerFallsBackToRegex(t *testing.T) {
	p := NewAddressParser(normalizer.MustNewCleaner(), nil, nil, nil)

	out := p.ParseAddress("100 Broadway Springfield IL 62701")
	require.False(t, Failed(out))
	assert.Equal(t, "100 Broadway", out.Parsed.Street)

	assert.True(t, Failed(p.ParseAddress("123 Main St, Phoenix, AZ 85001")))
	assert.True(t, Failed(nil))
}
