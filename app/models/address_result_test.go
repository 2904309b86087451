package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsedAddress_IsEmpty(t *testing.T) {
	assert.True(t, ParsedAddress{}.IsEmpty())
	assert.True(t, ParsedAddress{City: "  "}.IsEmpty())
	assert.False(t, ParsedAddress{Zip: "85001"}.IsEmpty())
}

func TestNewSuccessResult(t *testing.T) {
	item := AddressItem{RowID: 4, Address: "1 Main St", OriginalRowData: map[string]any{"name": "Acme"}}
	outcome := &ParseOutcome{
		Parsed:            ParsedAddress{Street: "1 Main St"},
		OverallConfidence: 2,
		CityConfidence:    0,
	}

	r := NewSuccessResult(item, outcome)
	assert.True(t, r.Success)
	assert.Equal(t, 4, r.RowID)
	assert.Equal(t, "1 Main St", r.OriginalAddress)
	assert.Equal(t, "Acme", r.OriginalRowData["name"])
	assert.Equal(t, "1 Main St", r.ParsedAddress.Street)
	assert.Empty(t, r.ErrorMessage)

	// the result holds its own copy of the parsed record
	outcome.Parsed.Street = "changed"
	assert.Equal(t, "1 Main St", r.ParsedAddress.Street)
}

func TestNewFailureResult(t *testing.T) {
	r := NewFailureResult(AddressItem{RowID: 9, Address: "???"}, "boom")
	assert.False(t, r.Success)
	assert.Nil(t, r.ParsedAddress)
	assert.Equal(t, "???", r.OriginalAddress)
	assert.Equal(t, "boom", r.ErrorMessage)
}

func TestAddressResult_EchoesEmptyRowData(t *testing.T) {
	var item AddressItem
	require.NoError(t, json.Unmarshal([]byte(`{"row_id":1,"address":"","original_row_data":{}}`), &item))

	b, err := json.Marshal(NewFailureResult(item, "boom"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"original_row_data":{}`)
}

func TestAddressCache_Expiry(t *testing.T) {
	c := NewAddressCache("fp", ParseOutcome{Raw: "x"})
	assert.Equal(t, "x", c.RawAddress)
	assert.False(t, c.IsExpired(0))
	assert.False(t, c.IsExpired(time.Hour))

	c.CreatedAt = time.Now().Add(-2 * time.Hour)
	assert.True(t, c.IsExpired(time.Hour))

	c.UpdateAccess()
	assert.Equal(t, 2, c.AccessCount)
}
