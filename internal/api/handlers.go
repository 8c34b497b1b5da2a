package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baxromumarov/country-explorer/internal/core"
	"github.com/baxromumarov/country-explorer/internal/countries"
	"github.com/baxromumarov/country-explorer/internal/httpx"
)

const maxFormBytes = 64 << 10

// SearchRequest carries either an explicit kind/value pair or the three
// form inputs; kind takes precedence when set.
type SearchRequest struct {
	Kind          string `json:"kind"`
	Value         string `json:"value"`
	CountrySearch string `json:"countrySearch"`
	CapitalSearch string `json:"capitalSearch"`
	RegionSearch  string `json:"regionSearch"`
}

type SearchResponse struct {
	Countries   []countries.DisplayRecord `json:"countries"`
	SearchType  string                    `json:"search_type"`
	SearchValue string                    `json:"search_value"`
	Message     string                    `json:"message,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeBody(w, r, &req, func(form url.Values) {
		req.Kind = form.Get("kind")
		req.Value = form.Get("value")
		req.CountrySearch = form.Get("countrySearch")
		req.CapitalSearch = form.Get("capitalSearch")
		req.RegionSearch = form.Get("regionSearch")
	}); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	kind, value, ok, err := resolveSearchRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Search kind must be one of country, capital or region")
		return
	}
	if !ok {
		respondError(w, http.StatusBadRequest, "Please fill at least one search field")
		return
	}

	records, err := s.countries.Search(r.Context(), kind, value)
	if err != nil {
		var fe *httpx.FetchError
		switch {
		case errors.Is(err, countries.ErrInvalidSearch):
			respondError(w, http.StatusBadRequest, "Please fill at least one search field")
		case errors.As(err, &fe):
			respondError(w, http.StatusBadGateway, fe.UserMessage())
		default:
			slog.Error("search failed", "kind", kind, "value", value, "error", err)
			respondError(w, http.StatusInternalServerError, "An error occurred while searching. Please try again.")
		}
		return
	}

	resp := SearchResponse{
		Countries:   records,
		SearchType:  kind.String(),
		SearchValue: value,
	}
	if len(records) == 0 {
		resp.Countries = []countries.DisplayRecord{}
		resp.Message = fmt.Sprintf("No countries found for \"%s\". Please check your spelling and try again.", value)
	}
	respondJSON(w, http.StatusOK, resp)
}

func resolveSearchRequest(req SearchRequest) (countries.Kind, string, bool, error) {
	if strings.TrimSpace(req.Kind) == "" {
		kind, value, ok := core.ResolveSearch(req.CountrySearch, req.CapitalSearch, req.RegionSearch)
		return kind, value, ok, nil
	}
	kind, err := countries.ParseKind(req.Kind)
	if err != nil {
		return "", "", false, err
	}
	value := strings.TrimSpace(req.Value)
	return kind, value, value != "", nil
}

func (s *Server) handleViewCountry(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "countryName")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	record, ok := s.countries.Detail(r.Context(), name)
	if !ok {
		respondError(w, http.StatusNotFound, "Country not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"country": record,
	})
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"title":       "About - Global Country Explorer",
		"description": "Search countries by name, capital or region and view their key facts.",
		"data_source": "https://restcountries.com",
		"search_kinds": []string{
			countries.KindCountry.String(),
			countries.KindCapital.String(),
			countries.KindRegion.String(),
		},
	})
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var msg core.ContactMessage
	if err := decodeBody(w, r, &msg, func(form url.Values) {
		msg.Name = form.Get("name")
		msg.Email = form.Get("email")
		msg.Message = form.Get("message")
	}); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := s.contact.Submit(r.Context(), msg); err != nil {
		if errors.Is(err, core.ErrInvalidContact) {
			respondError(w, http.StatusBadRequest, "Please provide your name, a valid email and a message")
			return
		}
		respondError(w, http.StatusInternalServerError, "Something went wrong on our end. Please try again later.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": core.ContactThanks,
	})
}

// decodeBody reads a JSON body into dst, or hands the parsed form to
// fromForm for urlencoded and multipart submissions.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, fromForm func(url.Values)) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return json.NewDecoder(r.Body).Decode(dst)
	}
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxFormBytes); err != nil {
			return err
		}
	} else if err := r.ParseForm(); err != nil {
		return err
	}
	fromForm(r.PostForm)
	return nil
}
