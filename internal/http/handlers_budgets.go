package http

import (
	"net/http"
	"sync/atomic"

	"financeflow/internal/core"
)

func budgetInput(p *RequestBodyParser) core.BudgetInput {
	return core.BudgetInput{
		Category: p.Get("category"),
		Amount:   p.Get("amount"),
	}
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.api.ListBudgets(r.Context(), queryUserID(r))
	if err != nil {
		s.writeError(w, r, err, failure{internal: "Failed to fetch budgets"})
		return
	}
	_ = NewJSONResponse().Body(budgets).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	f := failure{internal: "Failed to create budget"}
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, err, f)
		return
	}

	b, err := s.api.CreateBudget(r.Context(), p.Get("userId"), budgetInput(p))
	if err != nil {
		s.writeError(w, r, err, f)
		return
	}
	atomic.AddInt64(&s.appMetrics.budgetsCreated, 1)
	_ = NewJSONResponse().Status(http.StatusCreated).Body(b).Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	f := failure{notFound: "Budget not found", internal: "Failed to update budget"}
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, err, f)
		return
	}

	b, err := s.api.UpdateBudget(r.Context(), r.PathValue("id"), p.Get("userId"), budgetInput(p))
	if err != nil {
		s.writeError(w, r, err, f)
		return
	}
	atomic.AddInt64(&s.appMetrics.recordsUpdated, 1)
	_ = NewJSONResponse().Body(b).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	err := s.api.DeleteBudget(r.Context(), r.PathValue("id"), queryUserID(r))
	if err != nil {
		s.writeError(w, r, err, failure{notFound: "Budget not found", internal: "Failed to delete budget"})
		return
	}
	atomic.AddInt64(&s.appMetrics.recordsDeleted, 1)
	_ = NewJSONResponse().Message("Budget deleted successfully").Write(w)
}
