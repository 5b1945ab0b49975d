package http

import (
	"net/http"

	"boatshare/internal/budget"
	"boatshare/internal/core"
)

// financingRequest carries the calculator inputs. Omitted parameters fall
// back to the configured defaults.
type financingRequest struct {
	PurchasePrice             *float64            `json:"purchase_price"`
	AnnualInterestRatePercent *float64            `json:"annual_interest_rate_percent"`
	LoanTermYears             *int                `json:"loan_term_years"`
	Contributions             []core.Contribution `json:"contributions"`
}

func (req financingRequest) parameters(def core.FinancingParameters) core.FinancingParameters {
	p := def
	if req.PurchasePrice != nil {
		p.PurchasePrice = *req.PurchasePrice
	}
	if req.AnnualInterestRatePercent != nil {
		p.AnnualInterestRatePercent = *req.AnnualInterestRatePercent
	}
	if req.LoanTermYears != nil {
		p.LoanTermYears = *req.LoanTermYears
	}
	return p
}

type breakdownView struct {
	core.PersonBreakdown
	Role core.Role `json:"role"`
}

type financingResponse struct {
	Parameters         core.FinancingParameters `json:"parameters"`
	TotalUpfront       float64                  `json:"total_upfront"`
	InternalLoanAmount float64                  `json:"internal_loan_amount"`
	MonthlyPayment     float64                  `json:"monthly_payment"`
	TotalInterest      float64                  `json:"total_interest"`
	Breakdown          []breakdownView          `json:"breakdown"`
}

func newFinancingResponse(p core.FinancingParameters, r core.FinancingResult) financingResponse {
	views := make([]breakdownView, len(r.Breakdown))
	for i, b := range r.Breakdown {
		views[i] = breakdownView{PersonBreakdown: b, Role: b.Role()}
	}
	return financingResponse{
		Parameters:         p,
		TotalUpfront:       r.TotalUpfront,
		InternalLoanAmount: r.InternalLoanAmount,
		MonthlyPayment:     r.MonthlyPayment,
		TotalInterest:      r.TotalInterest,
		Breakdown:          views,
	}
}

func (s *Server) handleFinancing(w http.ResponseWriter, r *http.Request) {
	var req financingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	params := req.parameters(s.deps.Defaults.Parameters())
	result, err := s.deps.Financing.Calculate(r.Context(), params, req.Contributions)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newFinancingResponse(params, result))
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req financingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	params := req.parameters(s.deps.Defaults.Parameters())
	sched, err := s.deps.Financing.Schedule(r.Context(), params, req.Contributions)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sched)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r.URL.Query(), "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	scenarios, err := s.deps.Financing.History(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"scenarios": scenarios})
}

type resizeRequest struct {
	Contributions []core.Contribution `json:"contributions"`
	Size          int                 `json:"size"`
}

func (s *Server) handleResizeOwners(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Size < 1 {
		writeError(w, r, budget.ErrInvalidFamily)
		return
	}
	writeJSON(w, r, http.StatusOK, resizeRequest{
		Contributions: core.ResizeContributions(req.Contributions, req.Size),
		Size:          req.Size,
	})
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	def := s.deps.Defaults

	familySize, err := queryInt(q, "family_size", def.FamilySize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// Plain numbers parse directly; "30 000 kr" style input goes through the
	// kroner parser.
	annualBudget, err := queryFloat(q, "annual_budget", def.AnnualBudget)
	if err != nil {
		if annualBudget, err = core.ParseKroner(q.Get("annual_budget")); err != nil {
			writeError(w, r, err)
			return
		}
	}
	boatType := def.BoatType
	if v := q.Get("boat_type"); v != "" {
		boatType = core.BoatType(v)
	}

	summary, err := budget.Summarize(familySize, annualBudget, boatType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}
