package gazetteer

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `city,city_ascii,state_id,state_name,population
Phoenix,Phoenix,AZ,Arizona,1608139
Tucson,Tucson,AZ,Arizona,542629
Springfield,Springfield,IL,Illinois,114394
Springfield,Springfield,MO,Missouri,169176
Cañon City,Canon City,CO,Colorado,16400
Mesa,Mesa,AZ,Arizona,504258
`

func TestParse(t *testing.T) {
	g, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, Stats{States: 4, Cities: 6}, g.Stats())
	assert.Equal(t, []string{"AZ", "CO", "IL", "MO"}, g.States())

	az := g.Cities("AZ")
	require.Len(t, az, 3)
	assert.Equal(t, "Phoenix", az[0].Name)
	assert.Equal(t, "Tucson", az[1].Name)
	assert.Equal(t, "Mesa", az[2].Name)

	all := g.AllCities()
	require.Len(t, all, 6)
	assert.Equal(t, "IL", all[2].State)
	assert.Equal(t, "MO", all[3].State)
	assert.Equal(t, "canon city", all[4].Key)
	assert.Equal(t, "Cañon City", all[4].Name)

	code, ok := g.StateCode("MISSOURI")
	assert.True(t, ok)
	assert.Equal(t, "MO", code)
	_, ok = g.StateCode("Missouri")
	assert.False(t, ok)

	assert.True(t, g.HasState("CO"))
	assert.False(t, g.HasState("co"))
	assert.Equal(t, "Colorado", g.StateName("CO"))
	assert.Nil(t, g.Cities("ZZ"))
}

func TestParse_ColumnOrderAndBOM(t *testing.T) {
	data := "\ufeffstate_name,state_id,city\nTexas,TX,Austin\n"
	g, err := Parse(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, g.Cities("TX"), 1)
	assert.Equal(t, "Austin", g.Cities("TX")[0].Name)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		empty bool
	}{
		{name: "no data", input: "", empty: true},
		{name: "header only", input: "city,state_id,state_name\n", empty: true},
		{name: "blank rows", input: "city,state_id\n ,AZ\nPhoenix,\n", empty: true},
		{name: "missing columns", input: "name,state\nPhoenix,AZ\n"},
		{name: "bad quoting", input: "city,state_id\n\"Phoenix,AZ\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := Parse(strings.NewReader(tc.input))
			assert.Nil(t, g)
			require.Error(t, err)
			assert.Equal(t, tc.empty, errors.Is(err, ErrEmptyGazetteer))
		})
	}
}

func TestNew_NormalizesCodes(t *testing.T) {
	g, err := New([]Row{{City: " Austin ", StateCode: "tx", StateName: "Texas"}})
	require.NoError(t, err)
	assert.Equal(t, "Austin", g.Cities("TX")[0].Name)
	assert.Equal(t, "austin", g.Cities("TX")[0].Key)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrEmptyGazetteer))
}

func TestGazetteer_AppendDoesNotLeak(t *testing.T) {
	g, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	az := g.Cities("AZ")
	_ = append(az, City{Name: "Nowhere", State: "AZ", Key: "nowhere"})
	all := g.AllCities()
	_ = append(all, City{Name: "Nowhere", State: "ZZ", Key: "nowhere"})
	_ = append(g.States(), "ZZ")

	assert.Len(t, g.Cities("AZ"), 3)
	assert.Len(t, g.AllCities(), 6)
	assert.Equal(t, []string{"AZ", "CO", "IL", "MO"}, g.States())
	assert.Nil(t, g.Cities("ZZ"))
}
