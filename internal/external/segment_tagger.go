package external

import (
	"regexp"
	"strings"
)

var (
	reSegZip          = regexp.MustCompile(`(?i)^(\d{5}(?:-\d{4})?|[a-z]\d[a-z]\s?\d[a-z]\d)$`)
	reSegStateZip     = regexp.MustCompile(`(?i)^([a-z]{2})(?:\s+(\d{5}(?:-\d{4})?|[a-z]\d[a-z]\s?\d[a-z]\d))?$`)
	reSegCityStateZip = regexp.MustCompile(`(?i)^(.+?)\s+([a-z]{2})\s+(\d{5}(?:-\d{4})?)$`)
	reSegHouse        = regexp.MustCompile(`^(\d+[A-Za-z]?)\s+(.+)$`)
	reSegUnit         = regexp.MustCompile(`(?i)^(?:apt|apartment|suite|ste|unit|fl|floor|rm|room)\s*[a-z0-9]+$`)
)

var countryNames = map[string]bool{
	"usa":                      true,
	"us":                       true,
	"united states":            true,
	"united states of america": true,
	"canada":                   true,
	"uk":                       true,
	"united kingdom":           true,
	"england":                  true,
	"scotland":                 true,
	"ireland":                  true,
	"mexico":                   true,
	"france":                   true,
	"germany":                  true,
	"spain":                    true,
	"italy":                    true,
	"netherlands":              true,
	"australia":                true,
	"new zealand":              true,
	"japan":                    true,
	"china":                    true,
	"india":                    true,
	"brazil":                   true,
}

// SegmentTagger labels comma-separated addresses by position, reading from
// the end: country, "ST 12345", city, then street pieces. It recognises
// nothing unless a country, state or postcode anchors the tail, so
// unstructured text is left to the parser's own fallback.
type SegmentTagger struct{}

func (SegmentTagger) Tag(text string) []Component {
	var segs []string
	for _, s := range strings.Split(text, ",") {
		if s = strings.TrimSpace(s); s != "" {
			segs = append(segs, s)
		}
	}
	if len(segs) < 2 {
		return nil
	}

	var city, state, zip, country string
	last := func() string { return segs[len(segs)-1] }
	pop := func() { segs = segs[:len(segs)-1] }

	if countryNames[strings.ToLower(last())] {
		country = last()
		pop()
	}
	if len(segs) > 1 && reSegZip.MatchString(last()) {
		zip = last()
		pop()
	}
	if len(segs) > 1 {
		if m := reSegStateZip.FindStringSubmatch(last()); m != nil {
			state = m[1]
			if m[2] != "" {
				zip = m[2]
			}
			pop()
		} else if m := reSegCityStateZip.FindStringSubmatch(last()); m != nil {
			city, state, zip = m[1], m[2], m[3]
			pop()
		}
	}
	if country == "" && state == "" && zip == "" {
		return nil
	}
	if city == "" && len(segs) > 1 {
		city = last()
		pop()
	}

	out := make([]Component, 0, len(segs)+4)
	for i, s := range segs {
		if i == 0 {
			if m := reSegHouse.FindStringSubmatch(s); m != nil {
				out = append(out, Component{Value: m[1], Label: "house_number"}, Component{Value: m[2], Label: "road"})
				continue
			}
		}
		if reSegUnit.MatchString(s) {
			out = append(out, Component{Value: s, Label: "unit"})
			continue
		}
		out = append(out, Component{Value: s, Label: "road"})
	}

	for _, c := range []Component{
		{Value: city, Label: "city"},
		{Value: state, Label: "state"},
		{Value: zip, Label: "postcode"},
		{Value: country, Label: "country"},
	} {
		if c.Value != "" {
			out = append(out, c)
		}
	}
	return out
}
