package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"5.676,62", 5676.62},
		{"1.234.567,89", 1234567.89},
		{"42", 42},
		{"0,5", 0.5},
		{"", 0},
		{"   ", 0},
		{"abc", 0},
		{"12,3", 12.3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Number(tt.in), "Number(%q)", tt.in)
	}
}

func TestDateKey(t *testing.T) {
	key := DateKey("2025-10-14")
	if assert.NotNil(t, key) {
		assert.Equal(t, int64(20251014), *key)
	}

	assert.Nil(t, DateKey(""))
	assert.Nil(t, DateKey("   "))
	assert.Nil(t, DateKey("not-a-date"))
}

func TestDateKeyNoCalendarValidation(t *testing.T) {
	// Impossible dates still produce a key from their digits.
	key := DateKey("2025-13-45")
	if assert.NotNil(t, key) {
		assert.Equal(t, int64(20251345), *key)
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, int64(3), Round(2.5))
	assert.Equal(t, int64(2), Round(2.4))
	assert.Equal(t, int64(0), Round(0))
	assert.Equal(t, int64(-3), Round(-2.5))
}
