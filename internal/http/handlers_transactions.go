package http

import (
	"net/http"
	"sync/atomic"

	"financeflow/internal/core"
)

func transactionInput(p *RequestBodyParser) core.TransactionInput {
	return core.TransactionInput{
		Amount:      p.Get("amount"),
		Date:        p.Get("date"),
		Description: p.Get("description"),
		Type:        p.Get("type"),
		Category:    p.Get("category"),
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.api.ListTransactions(r.Context(), queryUserID(r))
	if err != nil {
		s.writeError(w, r, err, failure{internal: "Failed to fetch transactions"})
		return
	}
	_ = NewJSONResponse().Body(txs).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	f := failure{internal: "Failed to create transaction"}
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, err, f)
		return
	}

	t, err := s.api.CreateTransaction(r.Context(), p.Get("userId"), transactionInput(p))
	if err != nil {
		s.writeError(w, r, err, f)
		return
	}
	atomic.AddInt64(&s.appMetrics.transactionsCreated, 1)
	_ = NewJSONResponse().Status(http.StatusCreated).Body(t).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	f := failure{notFound: "Transaction not found", internal: "Failed to update transaction"}
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, err, f)
		return
	}

	t, err := s.api.UpdateTransaction(r.Context(), r.PathValue("id"), p.Get("userId"), transactionInput(p))
	if err != nil {
		s.writeError(w, r, err, f)
		return
	}
	atomic.AddInt64(&s.appMetrics.recordsUpdated, 1)
	_ = NewJSONResponse().Body(t).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	err := s.api.DeleteTransaction(r.Context(), r.PathValue("id"), queryUserID(r))
	if err != nil {
		s.writeError(w, r, err, failure{notFound: "Transaction not found", internal: "Failed to delete transaction"})
		return
	}
	atomic.AddInt64(&s.appMetrics.recordsDeleted, 1)
	_ = NewJSONResponse().Message("Transaction deleted successfully").Write(w)
}

func (s *Server) handleTransactionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.api.TransactionStats(r.Context(), queryUserID(r))
	if err != nil {
		s.writeError(w, r, err, failure{internal: "Failed to fetch transaction statistics"})
		return
	}
	_ = NewJSONResponse().Body(stats).Write(w)
}
