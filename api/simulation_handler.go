package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vendaflow/simulation"
)

// SimulationHandler exposes financing simulations for the public site.
type SimulationHandler struct{}

func NewSimulationHandler() *SimulationHandler {
	return &SimulationHandler{}
}

func (h *SimulationHandler) PublicRoutes(r chi.Router) {
	r.Post("/", h.simulate)
}

type simulationRequest struct {
	PropertyPrice int64   `json:"propertyPrice"`
	DownPayment   int64   `json:"downPayment"`
	AnnualRate    float64 `json:"annualRate"`
	TermMonths    int     `json:"termMonths"`
	System        string  `json:"system"`
}

type installmentResponse struct {
	Number       int   `json:"number"`
	Payment      int64 `json:"payment"`
	Amortization int64 `json:"amortization"`
	Interest     int64 `json:"interest"`
	Balance      int64 `json:"balance"`
}

type simulationResponse struct {
	FinancedAmount   int64                 `json:"financedAmount"`
	MonthlyRate      float64               `json:"monthlyRate"`
	FirstInstallment int64                 `json:"firstInstallment"`
	LastInstallment  int64                 `json:"lastInstallment"`
	TotalPaid        int64                 `json:"totalPaid"`
	TotalInterest    int64                 `json:"totalInterest"`
	Schedule         []installmentResponse `json:"schedule"`
}

func (h *SimulationHandler) simulate(w http.ResponseWriter, r *http.Request) {
	var req simulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	system := simulation.System(req.System)
	if system == "" {
		system = simulation.SystemPrice
	}

	result, err := simulation.Simulate(simulation.Params{
		PropertyPrice: req.PropertyPrice,
		DownPayment:   req.DownPayment,
		AnnualRate:    req.AnnualRate,
		TermMonths:    req.TermMonths,
		System:        system,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	schedule := make([]installmentResponse, 0, len(result.Schedule))
	for _, inst := range result.Schedule {
		schedule = append(schedule, installmentResponse{
			Number:       inst.Number,
			Payment:      inst.Payment,
			Amortization: inst.Amortization,
			Interest:     inst.Interest,
			Balance:      inst.Balance,
		})
	}

	writeJSON(w, http.StatusOK, simulationResponse{
		FinancedAmount:   result.FinancedAmount,
		MonthlyRate:      result.MonthlyRate,
		FirstInstallment: result.FirstInstallment,
		LastInstallment:  result.LastInstallment,
		TotalPaid:        result.TotalPaid,
		TotalInterest:    result.TotalInterest,
		Schedule:         schedule,
	})
}
