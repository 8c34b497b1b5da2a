package countries

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/country-explorer/internal/config"
	"github.com/baxromumarov/country-explorer/internal/httpx"
)

type upstreamCall struct {
	path  string
	query string
}

// fakeUpstream mimics the country-data service: it answers from a fixed
// route table and records what it was asked for.
type fakeUpstream struct {
	mu     sync.Mutex
	calls  []upstreamCall
	routes map[string]string
	status map[string]int
}

func (u *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.calls = append(u.calls, upstreamCall{path: r.URL.Path, query: r.URL.RawQuery})
	u.mu.Unlock()

	if code, ok := u.status[r.URL.Path]; ok {
		w.WriteHeader(code)
		_, _ = fmt.Fprintf(w, `{"status":%d,"message":%q}`, code, http.StatusText(code))
		return
	}
	body, ok := u.routes[r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":404,"message":"Not Found"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (u *fakeUpstream) lastCall(t *testing.T) upstreamCall {
	t.Helper()
	u.mu.Lock()
	defer u.mu.Unlock()
	require.NotEmpty(t, u.calls)
	return u.calls[len(u.calls)-1]
}

func newTestFetcher(t *testing.T, up http.Handler) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	client := httpx.NewClient(httpx.Options{UserAgent: config.DefaultUserAgent, Timeout: 2 * time.Second, RPS: 1000, Burst: 100})
	return NewFetcher(client, config.Config{BaseURL: srv.URL + "/"})
}

func TestFetch_BuildsURLPerKind(t *testing.T) {
	up := &fakeUpstream{routes: map[string]string{
		"/name/united states": `[{"cca3": "USA"}]`,
		"/capital/Paris":      `[{"cca3": "FRA", "capital": ["Paris"]}]`,
		"/region/europe":      `[{"cca3": "FRA"}, {"cca3": "DEU"}]`,
	}}
	f := newTestFetcher(t, up)
	ctx := context.Background()

	docs, err := f.Fetch(ctx, KindCountry, " united states ")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, upstreamCall{path: "/name/united states", query: "fullText=false"}, up.lastCall(t))

	docs, err = f.Fetch(ctx, KindCapital, "Paris")
	require.NoError(t, err)
	require.NotEmpty(t, docs)
	assert.Contains(t, Normalize(docs[0]).Capital, "Paris")
	assert.Equal(t, upstreamCall{path: "/capital/Paris"}, up.lastCall(t))

	docs, err = f.Fetch(ctx, KindRegion, "europe")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, upstreamCall{path: "/region/europe"}, up.lastCall(t))
}

func TestFetch_NotFoundIsEmpty(t *testing.T) {
	f := newTestFetcher(t, &fakeUpstream{})

	docs, err := f.Fetch(context.Background(), KindCountry, "xyznotacountry")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestFetch_SingleObjectBody(t *testing.T) {
	up := &fakeUpstream{routes: map[string]string{"/name/france": franceJSON}}
	f := newTestFetcher(t, up)

	docs, err := f.Fetch(context.Background(), KindCountry, "france")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "France", Normalize(docs[0]).Name)
}

func TestFetch_FailuresCarryUserMessage(t *testing.T) {
	up := &fakeUpstream{
		routes: map[string]string{"/region/garbled": `<html>maintenance</html>`},
		status: map[string]int{"/region/broken": http.StatusInternalServerError},
	}
	f := newTestFetcher(t, up)

	for _, value := range []string{"broken", "garbled"} {
		_, err := f.Fetch(context.Background(), KindRegion, value)
		require.Error(t, err, value)

		var fe *httpx.FetchError
		require.True(t, errors.As(err, &fe), value)
		assert.Equal(t, FetchFailedMessage, fe.UserMessage(), value)
	}
}

func TestFetch_Timeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(slow)
	defer srv.Close()

	client := httpx.NewClient(httpx.Options{Timeout: 50 * time.Millisecond, RPS: 1000, Burst: 100})
	f := NewFetcher(client, config.Config{BaseURL: srv.URL})

	_, err := f.Fetch(context.Background(), KindCountry, "france")
	var fe *httpx.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, FetchFailedMessage, fe.Message)
	assert.Zero(t, fe.Status)
}

func TestFetch_ConcurrentSearchesWithDefaultConfig(t *testing.T) {
	up := &fakeUpstream{routes: map[string]string{"/region/europe": `[{"cca3": "FRA"}, {"cca3": "DEU"}]`}}
	srv := httptest.NewServer(up)
	defer srv.Close()

	client := httpx.NewClient(httpx.Options{UserAgent: config.DefaultUserAgent, Timeout: 10 * time.Second, Burst: 10})
	f := NewFetcher(client, config.Config{BaseURL: srv.URL})

	const searches = 80
	var wg sync.WaitGroup
	errs := make(chan error, searches)
	for i := 0; i < searches; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			docs, err := f.Fetch(context.Background(), KindRegion, "europe")
			if err == nil && len(docs) != 2 {
				err = fmt.Errorf("got %d documents", len(docs))
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	up.mu.Lock()
	defer up.mu.Unlock()
	assert.Len(t, up.calls, searches)
}

func TestFetch_InvalidSearch(t *testing.T) {
	up := &fakeUpstream{}
	f := newTestFetcher(t, up)

	_, err := f.Fetch(context.Background(), KindCountry, "   ")
	assert.ErrorIs(t, err, ErrInvalidSearch)

	_, err = f.Fetch(context.Background(), Kind("currency"), "eur")
	assert.ErrorIs(t, err, ErrInvalidSearch)

	assert.Empty(t, up.calls)
}

func TestFetch_NeverSendsAPIKey(t *testing.T) {
	srv := httptest.NewServer(&fakeUpstream{})
	srv.Close()

	client := httpx.NewClient(httpx.Options{Timeout: time.Second})
	f := NewFetcher(client, config.Config{BaseURL: srv.URL, APIKey: "k-123"})

	_, err := f.Fetch(context.Background(), KindCapital, "Rome")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "k-123")

	up := &fakeUpstream{routes: map[string]string{"/capital/Rome": `[]`}}
	live := httptest.NewServer(up)
	defer live.Close()

	f = NewFetcher(client, config.Config{BaseURL: live.URL, APIKey: "k-123"})
	_, err = f.Fetch(context.Background(), KindCapital, "Rome")
	require.NoError(t, err)

	call := up.lastCall(t)
	assert.Empty(t, call.query)
	assert.NotContains(t, call.query, "access_key")
}

func TestFetchOne(t *testing.T) {
	up := &fakeUpstream{
		routes: map[string]string{"/name/France": `[` + franceJSON + `, {"cca3": "XXX"}]`},
		status: map[string]int{"/name/Broken": http.StatusBadGateway},
	}
	f := newTestFetcher(t, up)
	ctx := context.Background()

	doc, ok := f.FetchOne(ctx, "France")
	require.True(t, ok)
	assert.Equal(t, "FRA", doc.CCA3.Value)
	assert.Equal(t, upstreamCall{path: "/name/France", query: "fullText=true"}, up.lastCall(t))

	_, ok = f.FetchOne(ctx, "Atlantis")
	assert.False(t, ok)

	_, ok = f.FetchOne(ctx, "Broken")
	assert.False(t, ok)

	_, ok = f.FetchOne(ctx, "  ")
	assert.False(t, ok)
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"country": KindCountry, " Capital ": KindCapital, "REGION": KindRegion} {
		got, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseKind("continent")
	assert.ErrorIs(t, err, ErrInvalidSearch)
	assert.True(t, strings.Contains(err.Error(), "continent"))
}
