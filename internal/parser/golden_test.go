package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/address-normalizer/app/models"
	"github.com/address-normalizer/internal/external"
	"github.com/address-normalizer/internal/gazetteer"
	"github.com/address-normalizer/internal/normalizer"
	"github.com/address-normalizer/internal/search"
)

// GoldenTest is one fixture under testdata/golden.
type GoldenTest struct {
	Raw    string `json:"raw"`
	Expect struct {
		Success           bool                 `json:"success"`
		Route             string               `json:"route"`
		Cleaned           string               `json:"cleaned"`
		Parsed            models.ParsedAddress `json:"parsed"`
		CityConfidence    float64              `json:"city_confidence"`
		OverallConfidence int                  `json:"overall_confidence"`
	} `json:"expect"`
}

func newTestParser(t *testing.T) *AddressParser {
	t.Helper()
	gaz, err := gazetteer.Load(filepath.Join("testdata", "cities.csv"))
	require.NoError(t, err)

	logger := zap.NewNop()
	corrector := search.NewCityCorrector(gaz, search.CorrectorConfig{}, logger)
	return NewAddressParser(normalizer.MustNewCleaner(), external.SegmentTagger{}, corrector, logger)
}

func TestGoldenTests(t *testing.T) {
	goldenDir := filepath.Join("testdata", "golden")
	files, err := os.ReadDir(goldenDir)
	require.NoError(t, err)

	p := newTestParser(t)
	ran := 0
	for _, file := range files {
		if filepath.Ext(file.Name()) != ".json" {
			continue
		}
		ran++

		t.Run(file.Name(), func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(goldenDir, file.Name()))
			require.NoError(t, err)

			var g GoldenTest
			require.NoError(t, json.Unmarshal(data, &g))

			out := p.ParseAddress(g.Raw)
			assert.Equal(t, g.Expect.Success, !Failed(out))
			assert.Equal(t, g.Expect.Route, out.Route)
			assert.Equal(t, g.Expect.Cleaned, out.Cleaned)
			assert.Equal(t, g.Expect.Parsed, out.Parsed)
			assert.InDelta(t, g.Expect.CityConfidence, out.CityConfidence, 0.01)
			assert.Equal(t, g.Expect.OverallConfidence, out.OverallConfidence)
		})
	}
	assert.NotZero(t, ran, "no golden fixtures found")
}
