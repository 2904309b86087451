package models

import "strings"

// Routes taken by the international router.
const (
	RouteDomestic      = "domestic"
	RouteCanada        = "canada"
	RouteInternational = "international"
)

// ParsedAddress is the fixed five-field postal record. Missing fields are
// empty strings, never absent.
type ParsedAddress struct {
	Street  string `json:"street" bson:"street"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	Zip     string `json:"zip" bson:"zip"`
	Country string `json:"country" bson:"country"`
}

// IsEmpty reports whether no field carries text.
func (p ParsedAddress) IsEmpty() bool {
	return strings.TrimSpace(p.Street) == "" &&
		strings.TrimSpace(p.City) == "" &&
		strings.TrimSpace(p.State) == "" &&
		strings.TrimSpace(p.Zip) == "" &&
		strings.TrimSpace(p.Country) == ""
}

// ParseOutcome is the result of normalizing a single address.
type ParseOutcome struct {
	Raw               string        `json:"raw" bson:"raw"`
	Cleaned           string        `json:"cleaned" bson:"cleaned"`
	Parsed            ParsedAddress `json:"parsed" bson:"parsed"`
	CityConfidence    float64       `json:"city_confidence" bson:"city_confidence"`
	OverallConfidence int           `json:"overall_confidence" bson:"overall_confidence"`
	Route             string        `json:"route" bson:"route"`
}

// AddressItem is one input row of a batch.
type AddressItem struct {
	RowID           int            `json:"row_id"`
	Address         string         `json:"address"`
	OriginalRowData map[string]any `json:"original_row_data,omitempty"`
}

// AddressResult is the per-row outcome of a batch. Build it with
// NewSuccessResult or NewFailureResult.
type AddressResult struct {
	RowID             int            `json:"row_id"`
	Success           bool           `json:"success"`
	OriginalAddress   string         `json:"original_address"`
	OriginalRowData   map[string]any `json:"original_row_data"`
	ParsedAddress     *ParsedAddress `json:"parsed_address,omitempty"`
	OverallConfidence int            `json:"overall_confidence,omitempty"`
	CityConfidence    float64        `json:"city_confidence,omitempty"`
	ErrorMessage      string         `json:"error_message,omitempty"`
}

// NewSuccessResult records a parsed row.
func NewSuccessResult(item AddressItem, outcome *ParseOutcome) AddressResult {
	parsed := outcome.Parsed
	return AddressResult{
		RowID:             item.RowID,
		Success:           true,
		OriginalAddress:   item.Address,
		OriginalRowData:   item.OriginalRowData,
		ParsedAddress:     &parsed,
		OverallConfidence: outcome.OverallConfidence,
		CityConfidence:    outcome.CityConfidence,
	}
}

// NewFailureResult records a row that could not be parsed.
func NewFailureResult(item AddressItem, message string) AddressResult {
	return AddressResult{
		RowID:           item.RowID,
		Success:         false,
		OriginalAddress: item.Address,
		OriginalRowData: item.OriginalRowData,
		ErrorMessage:    message,
	}
}

// BatchOutcome aggregates a processed batch. Results are ordered by row id.
type BatchOutcome struct {
	Success        bool            `json:"success"`
	ProcessedCount int             `json:"processed_count"`
	ErrorCount     int             `json:"error_count"`
	Results        []AddressResult `json:"results"`
}

// CityMatch is a scored gazetteer city.
type CityMatch struct {
	City  string  `json:"city"`
	State string  `json:"state"`
	Score float64 `json:"score"`
}
