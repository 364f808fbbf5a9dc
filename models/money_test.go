package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Money
		out  string
	}{
		{"whole rupees", "2500", Money(250000), "2500"},
		{"with paise", "1500.50", Money(150050), "1500.5"},
		{"quoted", `"99.99"`, Money(9999), "99.99"},
		{"zero", "0", Money(0), "0"},
		{"sub-paise rounds to nearest", "10.005", Money(1001), "10.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Money
			require.NoError(t, json.Unmarshal([]byte(tt.in), &m))
			assert.Equal(t, tt.want, m)

			b, err := json.Marshal(m)
			require.NoError(t, err)
			assert.Equal(t, tt.out, string(b))
		})
	}

	var m Money
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &m))
}

func TestMoneyParts(t *testing.T) {
	m := Money(150050)
	assert.Equal(t, int64(1500), m.Rupees())
	assert.Equal(t, 50, m.Paise())
	assert.Equal(t, "1500.50", m.String())
}
