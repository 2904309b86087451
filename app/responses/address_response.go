package responses

import (
	"time"

	"github.com/address-normalizer/app/models"
)

// ParseAddressResponse is the single-address body.
type ParseAddressResponse struct {
	Raw               string               `json:"raw"`
	Cleaned           string               `json:"cleaned"`
	Parsed            models.ParsedAddress `json:"parsed"`
	CityConfidence    float64              `json:"city_confidence"`
	OverallConfidence int                  `json:"overall_confidence"`
	Route             string               `json:"route"`
	ProcessingTimeMs  int64                `json:"processing_time_ms"`
}

// NewParseAddressResponse flattens a parse outcome.
func NewParseAddressResponse(o *models.ParseOutcome, elapsed time.Duration) ParseAddressResponse {
	return ParseAddressResponse{
		Raw:               o.Raw,
		Cleaned:           o.Cleaned,
		Parsed:            o.Parsed,
		CityConfidence:    o.CityConfidence,
		OverallConfidence: o.OverallConfidence,
		Route:             o.Route,
		ProcessingTimeMs:  elapsed.Milliseconds(),
	}
}

// BatchParseResponse is the synchronous batch body.
type BatchParseResponse struct {
	Success        bool                   `json:"success"`
	ProcessedCount int                    `json:"processed_count"`
	ErrorCount     int                    `json:"error_count"`
	Results        []models.AddressResult `json:"results"`
}

// JobSubmittedResponse acknowledges an async batch.
type JobSubmittedResponse struct {
	JobID          string `json:"job_id"`
	TotalAddresses int    `json:"total_addresses"`
	StatusURL      string `json:"status_url"`
	ResultsURL     string `json:"results_url"`
	Message        string `json:"message"`
}

// CitySuggestResponse lists suggested cities.
type CitySuggestResponse struct {
	Query   string             `json:"query"`
	State   string             `json:"state,omitempty"`
	Matches []models.CityMatch `json:"matches"`
}

// ErrorResponse is the error envelope of every endpoint.
type ErrorResponse struct {
	Error     string      `json:"error"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp string      `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// NewErrorResponse stamps an error envelope with the current time.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// SuccessResponse wraps admin action results.
type SuccessResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// HealthCheckResponse is returned by the health probes.
type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}
