package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberUnmarshal(t *testing.T) {
	var row PerformanceRow
	err := json.Unmarshal([]byte(`{
		"Campaign": "Impression FB Perfume",
		"Date": "2025-10-14",
		"AmountSpent": "5.676,62",
		"Results": 12,
		"Impressions": "1.000"
	}`), &row)
	require.NoError(t, err)

	assert.Equal(t, 5676.62, row.AmountSpent.Float())
	assert.Equal(t, int64(12), row.Results.Count())
	assert.Equal(t, int64(1000), row.Impressions.Count())
	assert.Nil(t, row.CostPerResult)
}

func TestNumberUnmarshalNeverFails(t *testing.T) {
	var n Number
	assert.NoError(t, json.Unmarshal([]byte(`"garbage"`), &n))
	assert.Equal(t, 0.0, n.Float())

	assert.NoError(t, json.Unmarshal([]byte(`null`), &n))
	assert.Equal(t, 0.0, n.Float())
}

func TestNumberUnmarshalWholeArray(t *testing.T) {
	var rows []DemographicsRow
	err := json.Unmarshal([]byte(`[
		{"Campaign":"Visit IG Launch","Date":"2025-10-14","Age":"18-24","Gender":"Female","Spend":"123,45","Impressions":500},
		{"Campaign":"Visit IG Launch","Date":"2025-10-14","Age":"25-34","Gender":"male","Spend":0,"Impressions":"bad"}
	]`), &rows)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 123.45, rows[0].Spend.Float())
	assert.Equal(t, 0.0, rows[1].Impressions.Float())
}

func TestEnvelope(t *testing.T) {
	ok, err := json.Marshal(OK(map[string]int{"processed": 3}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"processed":3}}`, string(ok))

	fail, err := json.Marshal(Fail("boom"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"data":{"error":"boom"}}`, string(fail))
}
