package core

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/baxromumarov/country-explorer/internal/countries"
	"github.com/baxromumarov/country-explorer/internal/observability"
)

// CountryFetcher is the subset of *countries.Fetcher the service needs.
type CountryFetcher interface {
	Fetch(ctx context.Context, kind countries.Kind, value string) ([]countries.RawCountry, error)
	FetchOne(ctx context.Context, exactName string) (countries.RawCountry, bool)
}

// CountryService runs the fetch → normalize pipeline for one request.
type CountryService struct {
	fetcher CountryFetcher
	metrics *observability.Metrics
}

func NewCountryService(fetcher CountryFetcher, metrics *observability.Metrics) *CountryService {
	return &CountryService{fetcher: fetcher, metrics: metrics}
}

// Search returns display records for every match. An empty slice means the
// service found nothing; an error means the lookup itself failed.
func (s *CountryService) Search(ctx context.Context, kind countries.Kind, value string) ([]countries.DisplayRecord, error) {
	start := time.Now()
	docs, err := s.fetcher.Fetch(ctx, kind, value)
	if err != nil {
		if !errors.Is(err, countries.ErrInvalidSearch) {
			s.metrics.ObserveSearch(kind.String(), "error", time.Since(start))
			s.metrics.IncFetchError(err)
		}
		return nil, err
	}

	records := countries.NormalizeAll(docs)
	outcome := "found"
	if len(records) == 0 {
		outcome = "empty"
	}
	s.metrics.ObserveSearch(kind.String(), outcome, time.Since(start))
	slog.Debug("country search", "kind", kind, "value", value, "results", len(records))
	return records, nil
}

// Detail looks up one country by exact name. Missing and unreachable
// records both come back as ok == false.
func (s *CountryService) Detail(ctx context.Context, name string) (countries.DisplayRecord, bool) {
	start := time.Now()
	doc, ok := s.fetcher.FetchOne(ctx, name)
	s.metrics.ObserveDetail(ok, time.Since(start))
	if !ok {
		return countries.DisplayRecord{}, false
	}
	return countries.Normalize(doc), true
}

// ResolveSearch picks the search from the three form inputs. The first
// non-blank of country, capital, region wins.
func ResolveSearch(country, capital, region string) (countries.Kind, string, bool) {
	candidates := []struct {
		kind  countries.Kind
		value string
	}{
		{countries.KindCountry, country},
		{countries.KindCapital, capital},
		{countries.KindRegion, region},
	}
	for _, c := range candidates {
		if v := strings.TrimSpace(c.value); v != "" {
			return c.kind, v, true
		}
	}
	return "", "", false
}
