package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/quote.works/internal/quote"
)

func (s *server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.quotes.Settings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var st quote.Settings
	if err := decodeJSON(w, r, &st); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.quotes.UpdateSettings(r.Context(), st)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *server) handleListTaxRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := s.quotes.TaxRegions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, regions)
}

func (s *server) handleCreateTaxRegion(w http.ResponseWriter, r *http.Request) {
	var region quote.TaxRegion
	if err := decodeJSON(w, r, &region); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.quotes.CreateTaxRegion(r.Context(), region)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleUpdateTaxRegion(w http.ResponseWriter, r *http.Request) {
	var region quote.TaxRegion
	if err := decodeJSON(w, r, &region); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.quotes.UpdateTaxRegion(r.Context(), chi.URLParam(r, "id"), region)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *server) handleListCertificationTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.quotes.CertificationTypes(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (s *server) handleCreateCertificationType(w http.ResponseWriter, r *http.Request) {
	var c quote.CertificationType
	if err := decodeJSON(w, r, &c); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.quotes.CreateCertificationType(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleUpdateCertificationType(w http.ResponseWriter, r *http.Request) {
	var c quote.CertificationType
	if err := decodeJSON(w, r, &c); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.quotes.UpdateCertificationType(r.Context(), chi.URLParam(r, "id"), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
