package requests

import "github.com/address-normalizer/app/models"

// ParseAddressRequest parses one free-text address.
type ParseAddressRequest struct {
	Text    string       `json:"text"`
	Options ParseOptions `json:"options,omitempty"`
}

// ParseOptions tweak a single parse.
type ParseOptions struct {
	SkipCache bool `json:"skip_cache,omitempty"`
}

// BatchParseRequest is the CSV-import batch body.
type BatchParseRequest struct {
	ImportType string               `json:"import_type" binding:"required"`
	Addresses  []models.AddressItem `json:"addresses" binding:"required"`
}

// CitySuggestRequest is bound from the query string.
type CitySuggestRequest struct {
	Query string `form:"q" binding:"required"`
	State string `form:"state"`
	Limit int    `form:"limit,default=10" binding:"min=1,max=50"`
}
