package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/quote.works/internal/quote"
)

func (s *server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	c, err := s.quotes.Catalog(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req quote.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	b, err := s.quotes.Estimate(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *server) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	var req quote.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	q, err := s.quotes.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/quotes/"+q.ID)
	writeJSON(w, http.StatusCreated, q.CustomerView())
}

// handleGetQuote serves the billed snapshot. Staff see the recalculated side
// through handleStaffQuote.
func (s *server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.CustomerQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handleStaffQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// handleQuoteText serves the billed snapshot as plain text.
func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	s.writeText(w, r, s.quotes.Summary)
}

func (s *server) handleStaffQuoteText(w http.ResponseWriter, r *http.Request) {
	s.writeText(w, r, s.quotes.StaffSummary)
}

func (s *server) writeText(w http.ResponseWriter, r *http.Request, render func(context.Context, string) (string, error)) {
	text, err := render(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

func (s *server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	items, err := s.quotes.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleRepriceQuote(w http.ResponseWriter, r *http.Request) {
	var req quote.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	q, err := s.quotes.Reprice(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handleRebillQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.Rebill(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}
