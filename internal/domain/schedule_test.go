package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSchedule_SumsToTotalAmount(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		years     int
		rate      string
		lastEMI   string
	}{
		{"even split", "100000", 2, "10", "5000"},
		{"rounded up emi", "1000", 1, "1", "84.13"},
		{"rounded down emi", "1000", 1, "0.6", "83.87"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms, err := ComputeLoanTerms(decimal.RequireFromString(tt.principal), tt.years, decimal.RequireFromString(tt.rate))
			require.NoError(t, err)

			schedule := BuildSchedule(terms)
			require.Len(t, schedule, terms.TotalEMIs)

			sum := decimal.Zero
			for i, row := range schedule {
				assert.Equal(t, i+1, row.Number)
				sum = sum.Add(row.Amount)
			}

			last := schedule[len(schedule)-1]
			assert.True(t, sum.Equal(terms.TotalAmount), "sum %s != total %s", sum, terms.TotalAmount)
			assert.True(t, last.BalanceAfter.IsZero())
			assert.True(t, last.Amount.Equal(decimal.RequireFromString(tt.lastEMI)), "last installment %s", last.Amount)
		})
	}
}
