package parser

import (
	"regexp"
	"strings"

	"github.com/address-normalizer/app/models"
	"github.com/address-normalizer/internal/normalizer"
)

// domesticCountries are the upper-cased country values treated as U.S.
// An absent country is domestic.
var domesticCountries = map[string]bool{
	"":              true,
	"USA":           true,
	"US":            true,
	"UNITED STATES": true,
	"U.S.A.":        true,
	"U.S.":          true,
}

var (
	reFallback  = regexp.MustCompile(`(?i)(\d{1,5}\s+[A-Za-z0-9\s]+?)\s+([A-Za-z][A-Za-z\s]+?)\s+([A-Za-z]{2})[,\s]+(\d{5}(?:-\d{4})?)`)
	reUSAToken  = regexp.MustCompile(`(?i)\bUSA\b`)
	reUSCountry = regexp.MustCompile(`(?i)\b(usa|u\.s\.a|united states|us)\b`)
)

// Route classifies a parsed country value.
func Route(country string) string {
	c := strings.ToUpper(strings.TrimSpace(country))
	switch {
	case domesticCountries[c]:
		return models.RouteDomestic
	case c == "CANADA":
		return models.RouteCanada
	default:
		return models.RouteInternational
	}
}

// ApplyRoute finishes a structural parse for its route. Domestic records get
// the regex fallback and casing; Canadian ones are returned as is; anything
// else collapses into Street so no text is lost.
func ApplyRoute(route string, p models.ParsedAddress, cleaned string) models.ParsedAddress {
	switch route {
	case models.RouteCanada:
		return p
	case models.RouteInternational:
		return models.ParsedAddress{Street: strings.TrimSpace(cleaned), Country: p.Country}
	}

	if p.IsEmpty() {
		p = Fallback(cleaned)
	}
	return normalizeDomestic(p)
}

// Fallback extracts "number street city ST 12345" from text the tagger could
// not read. No match leaves every field empty.
func Fallback(text string) models.ParsedAddress {
	m := reFallback.FindStringSubmatch(text)
	if m == nil {
		return models.ParsedAddress{}
	}

	p := models.ParsedAddress{
		Street: strings.TrimSpace(m[1]),
		City:   normalizer.TitleCase(strings.TrimSpace(m[2])),
		State:  strings.ToUpper(m[3]),
		Zip:    m[4],
	}
	if reUSAToken.MatchString(text) {
		p.Country = "USA"
	}
	return p
}

func normalizeDomestic(p models.ParsedAddress) models.ParsedAddress {
	if p.City != "" {
		p.City = normalizer.TitleCase(p.City)
	}
	if p.State != "" {
		p.State = strings.ToUpper(p.State)
	}
	if p.Country != "" {
		if reUSCountry.MatchString(p.Country) {
			p.Country = "USA"
		} else {
			p.Country = normalizer.TitleCase(p.Country)
		}
	}
	return p
}
