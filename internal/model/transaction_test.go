package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTypeForAmount(t *testing.T) {
	assert.Equal(t, TypeExit, TypeForAmount(decimal.RequireFromString("-0.01")))
	assert.Equal(t, TypeEntry, TypeForAmount(decimal.RequireFromString("100.00")))
	assert.Equal(t, TypeEntry, TypeForAmount(decimal.Zero))
}

func TestStatementEntry_Description(t *testing.T) {
	tests := []struct {
		name  string
		entry StatementEntry
		want  string
	}{
		{
			name:  "memo wins over name",
			entry: StatementEntry{Memo: "Uber *Trip", Name: "UBER TRIP"},
			want:  "Uber *Trip",
		},
		{
			name:  "name covers missing memo",
			entry: StatementEntry{Name: "SUPERMERCADO DIA"},
			want:  "SUPERMERCADO DIA",
		},
		{
			name:  "whitespace memo does not count",
			entry: StatementEntry{Memo: "   ", Name: "PADARIA"},
			want:  "PADARIA",
		},
		{
			name:  "neither yields the placeholder",
			entry: StatementEntry{},
			want:  NoDescription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.Description())
		})
	}
}
