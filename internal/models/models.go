// Package models defines the external ingestion payload contract and the
// response envelope shared by every operation.
package models

import (
	"encoding/json"

	"github.com/parfumelite/ads-warehouse/internal/normalize"
)

// Number is a numeric payload field that accepts either a JSON number or
// a locale-formatted string ("5.676,62"). Unmarshaling never fails:
// missing, null, or unparsable values become 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = 0
			return nil
		}
		*n = Number(normalize.Number(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

// Float returns the underlying float64.
func (n Number) Float() float64 { return float64(n) }

// Count rounds the value to the nearest integer, for fields that are
// logically counts.
func (n Number) Count() int64 { return normalize.Round(float64(n)) }

// PerformanceRow is one record of the ad performance export. Grain: one
// ad, one day, one action type.
type PerformanceRow struct {
	Campaign      string  `json:"Campaign"`
	Date          string  `json:"Date"`
	AdSet         string  `json:"AdSet,omitempty"`
	Ad            string  `json:"Ad,omitempty"`
	Indicator     string  `json:"Indicator,omitempty"`
	ActionKey     string  `json:"ActionKey,omitempty"`
	AmountSpent   Number  `json:"AmountSpent"`
	Results       Number  `json:"Results"`
	CostPerResult *Number `json:"CostPerResult,omitempty"`
	Impressions   Number  `json:"Impressions"`
}

// DemographicsRow is one record of the age/gender export. Grain: one
// campaign, one day, one age group, one gender.
type DemographicsRow struct {
	Campaign    string `json:"Campaign"`
	Date        string `json:"Date"`
	ActionKey   string `json:"ActionKey,omitempty"`
	Age         string `json:"Age"`
	Gender      string `json:"Gender"`
	Spend       Number `json:"Spend"`
	Impressions Number `json:"Impressions"`
}

// RegionRow is one record of the regional export. Grain: one campaign,
// one day, one region.
type RegionRow struct {
	Campaign    string `json:"Campaign"`
	Date        string `json:"Date"`
	Region      string `json:"Region"`
	Spend       Number `json:"Spend"`
	Impressions Number `json:"Impressions"`
}

// Envelope is the uniform response wrapper: {success, data}. Failures use
// the same shape with data = {"error": message}.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// OK wraps data in a success envelope.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail wraps an error message in a failure envelope.
func Fail(message string) Envelope {
	return Envelope{Success: false, Data: map[string]string{"error": message}}
}
