package external

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaggerFunc(t *testing.T) {
	var tg Tagger = TaggerFunc(func(text string) []Component {
		return []Component{{Value: text, Label: "road"}}
	})

	got := tg.Tag("main st")
	assert.Equal(t, []Component{{Value: "main st", Label: "road"}}, got)
}

func TestNullTagger(t *testing.T) {
	assert.Empty(t, NullTagger{}.Tag("123 Main St"))
}

func TestSegmentTagger(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []Component
	}{
		{
			name:  "us address",
			input: "123 Main St, Phoenix, AZ 85001",
			expected: []Component{
				{Value: "123", Label: "house_number"},
				{Value: "Main St", Label: "road"},
				{Value: "Phoenix", Label: "city"},
				{Value: "AZ", Label: "state"},
				{Value: "85001", Label: "postcode"},
			},
		},
		{
			name:  "city state zip in one segment",
			input: "500 W Washington St, Suite 4, Phoenix AZ 85003, USA",
			expected: []Component{
				{Value: "500", Label: "house_number"},
				{Value: "W Washington St", Label: "road"},
				{Value: "Suite 4", Label: "unit"},
				{Value: "Phoenix", Label: "city"},
				{Value: "AZ", Label: "state"},
				{Value: "85003", Label: "postcode"},
				{Value: "USA", Label: "country"},
			},
		},
		{
			name:  "canada",
			input: "456 Rue Principale, Montreal, QC, Canada",
			expected: []Component{
				{Value: "456", Label: "house_number"},
				{Value: "Rue Principale", Label: "road"},
				{Value: "Montreal", Label: "city"},
				{Value: "QC", Label: "state"},
				{Value: "Canada", Label: "country"},
			},
		},
		{
			name:  "uk",
			input: "10 Downing Street, London, UK",
			expected: []Component{
				{Value: "10", Label: "house_number"},
				{Value: "Downing Street", Label: "road"},
				{Value: "London", Label: "city"},
				{Value: "UK", Label: "country"},
			},
		},
		{
			name:  "separate zip segment",
			input: "9 Elm Rd, Austin, TX, 73301",
			expected: []Component{
				{Value: "9", Label: "house_number"},
				{Value: "Elm Rd", Label: "road"},
				{Value: "Austin", Label: "city"},
				{Value: "TX", Label: "state"},
				{Value: "73301", Label: "postcode"},
			},
		},
		{name: "single segment", input: "asdf1234"},
		{name: "no anchor", input: "foo, bar, baz"},
		{name: "empty", input: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SegmentTagger{}.Tag(tc.input)
			if tc.expected == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.expected, got)
		})
	}
}
