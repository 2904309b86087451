package normalizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleaner_Clean(t *testing.T) {
	c := MustNewCleaner()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already clean",
			input:    "123 Main St, Phoenix, AZ 85001",
			expected: "123 Main St, Phoenix, AZ 85001",
		},
		{
			name:     "attn and phone",
			input:    "ATTN: John 555-123-4567 123 Main St, Phoenix, AZ 85001",
			expected: "John 123 Main St, Phoenix, AZ 85001",
		},
		{
			name:     "country and misspelling",
			input:    "123 Main St., Pheonix, U.S.A.",
			expected: "123 Main St, Phoenix, USA",
		},
		{
			name:     "spaced country",
			input:    "9 Pine Rd, Austin, TX, u. s. a",
			expected: "9 Pine Rd, Austin, TX, USA",
		},
		{
			name:     "business hours",
			input:    "Open 9am-5pm: 42 Elm Rd",
			expected: "Open 42 Elm Rd",
		},
		{
			name:     "extension with dot",
			input:    "100 Oak Ave ext. 55",
			expected: "100 Oak Ave",
		},
		{
			name:     "short extension",
			input:    "Call x304, 5 Pine St",
			expected: "Call, 5 Pine St",
		},
		{
			name:     "comma spacing",
			input:    "1 A St ,Springfield ,IL",
			expected: "1 A St, Springfield, IL",
		},
		{
			name:     "leading and trailing separators",
			input:    "--, 12 Elm St. -",
			expected: "12 Elm St",
		},
		{
			name:     "attention word",
			input:    "Attention Receiving, 77 Dock Rd",
			expected: "Receiving, 77 Dock Rd",
		},
		{
			name:     "accents kept",
			input:    "456 Rue Principale, Montréal, QC, Canada",
			expected: "456 Rue Principale, Montréal, QC, Canada",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    "   \t ",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, c.Clean(tc.input))
		})
	}
}

func TestCleaner_Idempotent(t *testing.T) {
	c := MustNewCleaner()

	inputs := []string{
		"",
		"asdf1234",
		"attnattn",
		"ATTN: John 555-123-4567 123 Main St, Phoenix, AZ 85001",
		"123 Main St., Pheonix, U.S.A.",
		"  ,, ,  10 Downing Street , London , UK ,, ",
		"Suite #200 - 1 Infinite Loop; Cupertino CA 95014 (8am - 6pm)",
		"p.o. box 12 / x99 / 555.123.4567",
		"u.s.a. u.s.a. usa",
		"Montréal, QC",
		"a\n b\t\tc , d",
		strings.Repeat("attn", 10),
		strings.Repeat("Attn:", 40) + " 1 Main St",
		strings.Repeat("(555) 123-4567 ", 12),
	}

	for _, in := range inputs {
		once := c.Clean(in)
		assert.Equal(t, once, c.Clean(once), "input %q", in)
	}
}

func TestCleaner_RepeatedAttn(t *testing.T) {
	c := MustNewCleaner()

	assert.Equal(t, "", c.Clean(strings.Repeat("attn", 10)))
	assert.Equal(t, "", c.Clean(strings.Repeat("attn", 100)))
	assert.Equal(t, "1 Main St", c.Clean(strings.Repeat("ATTN:", 25)+" 1 Main St"))
}

func FuzzClean(f *testing.F) {
	seeds := []string{
		"",
		"attnattn",
		strings.Repeat("attn", 10),
		"ATTN: John 555-123-4567 123 Main St, Phoenix, AZ 85001",
		"123 Main St., Pheonix, U.S.A.",
		"Open 9am-5pm: 42 Elm Rd ext. 55",
		"  ,, ,  10 Downing Street , London , UK ,, ",
		"Montréal, QC",
		"\xff\xfe,,--",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	c := MustNewCleaner()
	f.Fuzz(func(t *testing.T, in string) {
		once := c.Clean(in)
		if twice := c.Clean(once); twice != once {
			t.Fatalf("Clean not idempotent for %q: %q then %q", in, once, twice)
		}
	})
}

func TestCleaner_NoPhoneOrAttnInOutput(t *testing.T) {
	c := MustNewCleaner()

	out := c.Clean("Attn: Shipping Dept 602.555.0199 x12 500 W Washington St, Phoenix AZ 85003")
	assert.NotContains(t, out, "602")
	assert.NotContains(t, out, "0199")
	assert.NotContains(t, out, "x12")
	assert.NotContains(t, out, "Attn")
	assert.NotContains(t, out, "  ")
	assert.Contains(t, out, "500 W Washington St, Phoenix AZ 85003")
}

func TestCleaner_CustomCorrections(t *testing.T) {
	c, err := NewCleanerWithCorrections([]CorrectionEntry{
		{Name: "philly", Pattern: `(?i)\bphilly\b`, Replace: "Philadelphia"},
	})
	require.NoError(t, err)

	assert.Equal(t, "1 Market St, Philadelphia, PA", c.Clean("1 Market St, philly, PA"))
	// the embedded table is not part of a custom cleaner
	assert.Equal(t, "Pheonix", c.Clean("Pheonix"))
}

func TestCleaner_BadCorrectionPattern(t *testing.T) {
	_, err := NewCleanerWithCorrections([]CorrectionEntry{{Name: "broken", Pattern: `(`}})
	assert.Error(t, err)
}

func TestCleaner_GrowingCorrectionRejected(t *testing.T) {
	_, err := NewCleanerWithCorrections([]CorrectionEntry{{Name: "echo", Pattern: `(?i)\bst\b`, Replace: "st st"}})
	assert.Error(t, err)

	// a replacement that maps onto itself is fine
	_, err = NewCleanerWithCorrections([]CorrectionEntry{{Name: "usa", Pattern: `(?i)\bU\.?S\.?A\.?\b`, Replace: "USA"}})
	assert.NoError(t, err)
}

func TestLoadRulesConfig(t *testing.T) {
	cfg, err := LoadRulesConfig()
	require.NoError(t, err)
	require.Len(t, cfg.Corrections, 2)
	assert.Equal(t, "country_usa", cfg.Corrections[0].Name)
	assert.Equal(t, "Phoenix", cfg.Corrections[1].Replace)
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, "montreal", FoldKey("Montréal"))
	assert.Equal(t, "st louis", FoldKey("  St   LOUIS "))
	assert.Equal(t, "canon city", FoldKey("Cañon City"))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Phoenix", TitleCase("PHOENIX"))
	assert.Equal(t, "New York", TitleCase("new york"))
	assert.Equal(t, "", TitleCase(""))
}
