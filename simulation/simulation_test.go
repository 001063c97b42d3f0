package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulate_PriceClosesAtZero(t *testing.T) {
	res, err := Simulate(Params{
		PropertyPrice: 50_000_000, // R$ 500.000,00
		DownPayment:   10_000_000,
		AnnualRate:    0.105,
		TermMonths:    360,
		System:        SystemPrice,
	})
	require.NoError(t, err)

	require.Len(t, res.Schedule, 360)
	assert.Equal(t, int64(40_000_000), res.FinancedAmount)
	assert.Zero(t, res.Schedule[359].Balance)

	var amortized int64
	for _, inst := range res.Schedule {
		amortized += inst.Amortization
		assert.Equal(t, inst.Payment, inst.Amortization+inst.Interest)
	}
	assert.Equal(t, res.FinancedAmount, amortized)
	assert.Equal(t, res.TotalPaid, res.FinancedAmount+res.TotalInterest)
}

func TestSimulate_PricePaymentsRoughlyConstant(t *testing.T) {
	res, err := Simulate(Params{
		PropertyPrice: 30_000_000,
		DownPayment:   6_000_000,
		AnnualRate:    0.12,
		TermMonths:    240,
		System:        SystemPrice,
	})
	require.NoError(t, err)

	// Apart from rounding residue in the final installment, Price payments
	// vary by at most a few centavos.
	first := res.Schedule[0].Payment
	for _, inst := range res.Schedule[:len(res.Schedule)-1] {
		assert.InDelta(t, float64(first), float64(inst.Payment), 2)
	}
}

func TestSimulate_SACDecreasingPayments(t *testing.T) {
	res, err := Simulate(Params{
		PropertyPrice: 50_000_000,
		DownPayment:   10_000_000,
		AnnualRate:    0.105,
		TermMonths:    360,
		System:        SystemSAC,
	})
	require.NoError(t, err)

	require.Len(t, res.Schedule, 360)
	assert.Zero(t, res.Schedule[359].Balance)
	assert.Greater(t, res.FirstInstallment, res.LastInstallment)

	var amortized int64
	for _, inst := range res.Schedule {
		amortized += inst.Amortization
	}
	assert.Equal(t, res.FinancedAmount, amortized)

	// The final installment absorbs rounding residue, so check monotonic
	// payments on the rest of the schedule.
	prev := res.Schedule[0].Payment
	for _, inst := range res.Schedule[1 : len(res.Schedule)-1] {
		assert.Less(t, inst.Payment, prev)
		prev = inst.Payment
	}
}

func TestSimulate_ZeroRate(t *testing.T) {
	for _, system := range []System{SystemPrice, SystemSAC} {
		res, err := Simulate(Params{
			PropertyPrice: 12_000_000,
			DownPayment:   0,
			AnnualRate:    0,
			TermMonths:    12,
			System:        system,
		})
		require.NoError(t, err, "system %s", system)

		assert.Zero(t, res.TotalInterest, "system %s", system)
		assert.Equal(t, res.FinancedAmount, res.TotalPaid, "system %s", system)
		assert.Zero(t, res.Schedule[11].Balance, "system %s", system)
	}
}

func TestSimulate_InvalidParams(t *testing.T) {
	cases := []struct {
		name   string
		params Params
	}{
		{"zero price", Params{PropertyPrice: 0, TermMonths: 12, System: SystemPrice}},
		{"down payment covers price", Params{PropertyPrice: 100, DownPayment: 100, TermMonths: 12, System: SystemPrice}},
		{"negative down payment", Params{PropertyPrice: 100, DownPayment: -1, TermMonths: 12, System: SystemPrice}},
		{"zero term", Params{PropertyPrice: 100, TermMonths: 0, System: SystemPrice}},
		{"term too long", Params{PropertyPrice: 100, TermMonths: 421, System: SystemPrice}},
		{"negative rate", Params{PropertyPrice: 100, AnnualRate: -0.1, TermMonths: 12, System: SystemPrice}},
		{"unknown system", Params{PropertyPrice: 100, TermMonths: 12, System: "balao"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Simulate(tc.params)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}
