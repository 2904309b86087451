package normalizer

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Rule is a single (pattern, replacement) step of the cleaning pipeline.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace string
}

// Apply runs the rule over s.
func (r Rule) Apply(s string) string {
	return r.Pattern.ReplaceAllString(s, r.Replace)
}

// Cleaner strips non-address noise from free text before parsing.
//
// The rules run in a fixed order:
//
//  1. trim + NFC
//  2. attn / attention tokens
//  3. phone numbers, then extension markers
//  4. business-hour ranges
//  5. correction table (country spellings, known misspellings)
//  6. every char outside letters, digits, '_', whitespace, ',' becomes a space
//  7. comma spacing, then whitespace runs
//  8. trim " ,.-" from both ends
//
// Later steps assume the earlier ones already ran: hours and phones must go
// before punctuation is flattened (step 6) or their separators disappear,
// and the correction table must see the dots in "U.S.A.".
type Cleaner struct {
	rules []Rule
}

var (
	reAttn       = regexp.MustCompile(`(?i)\battn:?(?:attn:?)*|attention\b`)
	rePhone      = regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	reExtension  = regexp.MustCompile(`(?i)\b(?:x|ext\.?)\s*\d{1,5}\b`)
	reHours      = regexp.MustCompile(`(?i)\b\d{1,2}\s?(am|pm)\s?-\s?\d{1,2}\s?(am|pm)\b`)
	reStrayPunct = regexp.MustCompile(`[^\p{L}\p{N}_\s,]`)
	reComma      = regexp.MustCompile(`\s*,\s*`)
	reSpaces     = regexp.MustCompile(`\s{2,}`)
)

// NewCleaner builds a cleaner around the embedded correction table.
func NewCleaner() (*Cleaner, error) {
	cfg, err := LoadRulesConfig()
	if err != nil {
		return nil, err
	}
	return NewCleanerWithCorrections(cfg.Corrections)
}

// MustNewCleaner is NewCleaner for package-level setup and tests.
func MustNewCleaner() *Cleaner {
	c, err := NewCleaner()
	if err != nil {
		panic(err)
	}
	return c
}

// NewCleanerWithCorrections builds a cleaner with a custom correction table
// slotted in at step 5.
func NewCleanerWithCorrections(entries []CorrectionEntry) (*Cleaner, error) {
	corrections, err := compileCorrections(entries)
	if err != nil {
		return nil, err
	}

	rules := []Rule{
		{Name: "attn", Pattern: reAttn, Replace: ""},
		{Name: "phone", Pattern: rePhone, Replace: ""},
		{Name: "extension", Pattern: reExtension, Replace: ""},
		{Name: "hours", Pattern: reHours, Replace: ""},
	}
	rules = append(rules, corrections...)
	rules = append(rules,
		Rule{Name: "stray_punct", Pattern: reStrayPunct, Replace: " "},
		Rule{Name: "comma", Pattern: reComma, Replace: ", "},
		Rule{Name: "spaces", Pattern: reSpaces, Replace: " "},
	)

	return &Cleaner{rules: rules}, nil
}

// Rules returns the ordered rule list (steps 2-7).
func (c *Cleaner) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Clean runs the pipeline until the text stops changing, so
// Clean(Clean(s)) == Clean(s) for every s. Every built-in rule either
// shrinks the text or leaves its own output alone, which bounds the loop;
// custom corrections are checked for the same property when compiled.
func (c *Cleaner) Clean(raw string) string {
	t := c.pass(raw)
	for {
		next := c.pass(t)
		if next == t {
			return t
		}
		t = next
	}
}

func (c *Cleaner) pass(s string) string {
	t := norm.NFC.String(strings.TrimSpace(s))
	for _, r := range c.rules {
		t = r.Apply(t)
	}
	return strings.Trim(t, " ,.-")
}
