// Package simulation computes financing simulations for listings. Figures are
// estimates only; banks apply their own rates, insurance and fees.
package simulation

import (
	"errors"
	"fmt"
	"math"
)

// System selects the amortization schedule.
type System string

const (
	// SystemPrice produces constant installments (Tabela Price).
	SystemPrice System = "price"
	// SystemSAC produces constant amortization and decreasing installments.
	SystemSAC System = "sac"
)

var (
	ErrInvalidParams = errors.New("simulation: invalid parameters")
)

// Params describes a financing request. Monetary values are in centavos and
// AnnualRate is a fraction (0.105 means 10.5% a year).
type Params struct {
	PropertyPrice int64
	DownPayment   int64
	AnnualRate    float64
	TermMonths    int
	System        System
}

// Installment is a single line of the amortization schedule.
type Installment struct {
	Number       int
	Payment      int64
	Amortization int64
	Interest     int64
	Balance      int64
}

// Result is a complete simulation.
type Result struct {
	FinancedAmount   int64
	MonthlyRate      float64
	FirstInstallment int64
	LastInstallment  int64
	TotalPaid        int64
	TotalInterest    int64
	Schedule         []Installment
}

// Simulate produces the full amortization schedule for the given parameters.
func Simulate(params Params) (Result, error) {
	if params.PropertyPrice <= 0 {
		return Result{}, fmt.Errorf("%w: property price must be positive", ErrInvalidParams)
	}
	if params.DownPayment < 0 || params.DownPayment >= params.PropertyPrice {
		return Result{}, fmt.Errorf("%w: down payment must be between zero and the property price", ErrInvalidParams)
	}
	if params.TermMonths < 1 || params.TermMonths > 420 {
		return Result{}, fmt.Errorf("%w: term must be between 1 and 420 months", ErrInvalidParams)
	}
	if params.AnnualRate < 0 || params.AnnualRate > 1 {
		return Result{}, fmt.Errorf("%w: annual rate must be a fraction between 0 and 1", ErrInvalidParams)
	}
	if params.System != SystemPrice && params.System != SystemSAC {
		return Result{}, fmt.Errorf("%w: unknown amortization system %q", ErrInvalidParams, params.System)
	}

	financed := params.PropertyPrice - params.DownPayment
	monthlyRate := math.Pow(1+params.AnnualRate, 1.0/12.0) - 1

	var schedule []Installment
	if params.System == SystemSAC {
		schedule = sacSchedule(financed, monthlyRate, params.TermMonths)
	} else {
		schedule = priceSchedule(financed, monthlyRate, params.TermMonths)
	}

	result := Result{
		FinancedAmount:   financed,
		MonthlyRate:      monthlyRate,
		FirstInstallment: schedule[0].Payment,
		LastInstallment:  schedule[len(schedule)-1].Payment,
		Schedule:         schedule,
	}
	for _, inst := range schedule {
		result.TotalPaid += inst.Payment
		result.TotalInterest += inst.Interest
	}

	return result, nil
}

// priceSchedule builds a Tabela Price schedule: the payment is fixed and the
// amortization share grows as the balance shrinks. Rounding residue is folded
// into the last installment so the balance closes at exactly zero.
func priceSchedule(financed int64, rate float64, months int) []Installment {
	payment := float64(financed) / float64(months)
	if rate > 0 {
		factor := math.Pow(1+rate, float64(months))
		payment = float64(financed) * rate * factor / (factor - 1)
	}

	schedule := make([]Installment, 0, months)
	balance := financed
	for n := 1; n <= months; n++ {
		interest := int64(math.Round(float64(balance) * rate))
		amortization := int64(math.Round(payment)) - interest
		if n == months || amortization > balance {
			amortization = balance
		}
		balance -= amortization
		schedule = append(schedule, Installment{
			Number:       n,
			Payment:      amortization + interest,
			Amortization: amortization,
			Interest:     interest,
			Balance:      balance,
		})
	}
	return schedule
}

// sacSchedule builds a SAC schedule: the amortization is fixed and the
// interest (hence the payment) decreases every month.
func sacSchedule(financed int64, rate float64, months int) []Installment {
	amortization := financed / int64(months)

	schedule := make([]Installment, 0, months)
	balance := financed
	for n := 1; n <= months; n++ {
		amort := amortization
		if n == months {
			amort = balance
		}
		interest := int64(math.Round(float64(balance) * rate))
		balance -= amort
		schedule = append(schedule, Installment{
			Number:       n,
			Payment:      amort + interest,
			Amortization: amort,
			Interest:     interest,
			Balance:      balance,
		})
	}
	return schedule
}
