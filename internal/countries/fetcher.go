package countries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/baxromumarov/country-explorer/internal/config"
	"github.com/baxromumarov/country-explorer/internal/httpx"
)

// FetchFailedMessage is the only failure text shown to end users.
const FetchFailedMessage = "Failed to fetch country data. Please try again."

// ErrInvalidSearch reports a search that cannot be sent upstream at all.
var ErrInvalidSearch = errors.New("invalid search")

// Getter is the outbound JSON client the Fetcher depends on.
type Getter interface {
	GetJSON(ctx context.Context, rawURL string) ([]byte, int, error)
}

// Fetcher looks up raw country documents on the remote service. One call
// makes exactly one outbound request; there are no retries.
type Fetcher struct {
	client  Getter
	baseURL string
}

func NewFetcher(client Getter, cfg config.Config) *Fetcher {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = config.DefaultBaseURL
	}
	return &Fetcher{
		client:  client,
		baseURL: base,
	}
}

// Fetch returns every document matching value for the given kind. A
// not-found answer from the service yields an empty result and no error.
// Transport failures, timeouts and unexpected statuses are returned as
// *httpx.FetchError carrying FetchFailedMessage.
func (f *Fetcher) Fetch(ctx context.Context, kind Kind, value string) ([]RawCountry, error) {
	endpoint, err := f.searchURL(kind, value)
	if err != nil {
		return nil, err
	}

	docs, err := f.get(ctx, endpoint)
	if err != nil {
		slog.Error("country fetch failed", "kind", kind, "value", value, "error", err)
		return nil, err
	}
	return docs, nil
}

// FetchOne looks up a single country by exact name. Every failure,
// including zero matches, is reported as ok == false.
func (f *Fetcher) FetchOne(ctx context.Context, exactName string) (RawCountry, bool) {
	name := strings.TrimSpace(exactName)
	if name == "" {
		return RawCountry{}, false
	}

	docs, err := f.get(ctx, f.endpoint("name", name, url.Values{"fullText": {"true"}}))
	if err != nil {
		slog.Warn("country detail fetch failed", "name", name, "error", err)
		return RawCountry{}, false
	}
	if len(docs) == 0 {
		return RawCountry{}, false
	}
	return docs[0], true
}

func (f *Fetcher) searchURL(kind Kind, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: empty search value", ErrInvalidSearch)
	}
	switch kind {
	case KindCountry:
		return f.endpoint("name", value, url.Values{"fullText": {"false"}}), nil
	case KindCapital:
		return f.endpoint("capital", value, nil), nil
	case KindRegion:
		return f.endpoint("region", value, nil), nil
	default:
		return "", fmt.Errorf("%w: unknown search kind %q", ErrInvalidSearch, kind)
	}
}

func (f *Fetcher) endpoint(resource, value string, query url.Values) string {
	endpoint := f.baseURL + "/" + resource + "/" + url.PathEscape(value)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

func (f *Fetcher) get(ctx context.Context, endpoint string) ([]RawCountry, error) {
	body, _, err := f.client.GetJSON(ctx, endpoint)
	if err != nil {
		var fe *httpx.FetchError
		if errors.As(err, &fe) && fe.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, fetchFailed(err)
	}

	docs, err := DecodeDocuments(body)
	if err != nil {
		return nil, fetchFailed(fmt.Errorf("decode response: %w", err))
	}
	return docs, nil
}

func fetchFailed(err error) *httpx.FetchError {
	var fe *httpx.FetchError
	if errors.As(err, &fe) {
		out := *fe
		out.Message = FetchFailedMessage
		return &out
	}
	return &httpx.FetchError{Message: FetchFailedMessage, Err: err}
}
