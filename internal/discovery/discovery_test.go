package discovery_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rohmanhakim/billtext/internal/cache"
	"github.com/rohmanhakim/billtext/internal/discovery"
	"github.com/rohmanhakim/billtext/internal/fetcher"
	"github.com/rohmanhakim/billtext/internal/metadata"
	"github.com/rohmanhakim/billtext/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discoverySink struct {
	metadata.NoopSink
	errors     []metadata.ErrorCause
	discovered []int
	lookups    []bool
}

func (s *discoverySink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	if packageName == "discovery" {
		s.errors = append(s.errors, cause)
	}
}

func (s *discoverySink) RecordDiscovery(listingUrl string, candidates int, accepted int, bills int) {
	s.discovered = append(s.discovered, bills)
}

func (s *discoverySink) RecordCacheLookup(cacheName string, key string, hit bool) {
	s.lookups = append(s.lookups, hit)
}

const listingHTML = `<html><body>
<table>
  <tr><td><a href="/sites/default/files/2024-06/Finance_Bill_2024.pdf">The Finance Bill, 2024</a></td></tr>
  <tr><td><a href="/sites/default/files/2024-06/Finance_Bill_2024.pdf">Download</a></td></tr>
  <tr><td><a href="/sites/default/files/2024-04/Health_Bill.pdf">The Primary Health Care Bill</a></td></tr>
</table>
</body></html>`

type harness struct {
	server *httptest.Server
	calls  *int32
	sink   *discoverySink
	disc   *discovery.BillDiscovery
}

func newHarness(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) harness {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	listingUrl, err := url.Parse(server.URL + "/the-national-assembly/house-business/bills")
	require.NoError(t, err)
	baseUrl, err := url.Parse(server.URL)
	require.NoError(t, err)

	sink := &discoverySink{}
	param := discovery.NewParam(*listingUrl, *baseUrl, "billtext-test", 2*time.Second, []string{"sites/default/files"})
	disc := discovery.NewBillDiscovery(
		sink,
		fetcher.NewHttpFetcher(sink, nil),
		cache.NewMemoryCache[string, []discovery.Bill](7*24*time.Hour, 1),
		param,
		retry.SingleAttempt(),
	)
	return harness{server: server, calls: &calls, sink: sink, disc: disc}
}

func TestBillDiscovery_Discover_Success(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(listingHTML))
	})

	bills := h.disc.Discover(context.Background())

	require.Len(t, bills, 2)
	assert.Equal(t, "The Finance Bill, 2024", bills[0].Title())
	first := bills[0].URL()
	assert.Equal(t, h.server.URL+"/sites/default/files/2024-06/Finance_Bill_2024.pdf", first.String())
	assert.Equal(t, "The Primary Health Care Bill", bills[1].Title())
	assert.Equal(t, []int{2}, h.sink.discovered)
}

func TestBillDiscovery_Catalog_ParsesListingWhateverItsContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
	}{
		{name: "octet stream", contentType: "application/octet-stream"},
		{name: "plain text", contentType: "text/plain"},
		{name: "undeclared", contentType: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.Write([]byte(`<html><body><a href="/sites/default/files/a.pdf">The Finance Bill 2024</a></body></html>`))
			})

			bills, err := h.disc.Catalog(context.Background())

			require.Nil(t, err)
			require.Len(t, bills, 1)
			assert.Equal(t, "The Finance Bill 2024", bills[0].Title())
			assert.Empty(t, h.sink.errors)
		})
	}
}

func TestBillDiscovery_Discover_CachesSuccess(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(listingHTML))
	})

	first := h.disc.Discover(context.Background())
	second := h.disc.Discover(context.Background())

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(h.calls))
	assert.Equal(t, []bool{false, true}, h.sink.lookups)
}

func TestBillDiscovery_Discover_CallerCannotMutateCache(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(listingHTML))
	})

	first := h.disc.Discover(context.Background())
	first[0] = discovery.NewBill("tampered", url.URL{})

	second := h.disc.Discover(context.Background())
	assert.Equal(t, "The Finance Bill, 2024", second[0].Title())
}

func TestBillDiscovery_Discover_EmptyListingIsCached(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><a href="/news">News</a></body></html>`))
	})

	assert.Empty(t, h.disc.Discover(context.Background()))
	assert.Empty(t, h.disc.Discover(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(h.calls))
}

func TestBillDiscovery_Discover_FailureIsSilentAndNotCached(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	bills := h.disc.Discover(context.Background())
	require.NotNil(t, bills)
	assert.Empty(t, bills)

	_ = h.disc.Discover(context.Background())
	assert.Equal(t, int32(2), atomic.LoadInt32(h.calls), "failures must not be cached")
	assert.Equal(t, []metadata.ErrorCause{metadata.CauseNetworkFailure, metadata.CauseNetworkFailure}, h.sink.errors)
}

func TestBillDiscovery_Catalog_ExposesReason(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	bills, err := h.disc.Catalog(context.Background())
	assert.Empty(t, bills)
	require.NotNil(t, err)

	var discoveryErr *discovery.DiscoveryError
	require.ErrorAs(t, err, &discoveryErr)
	assert.Equal(t, discovery.ErrCauseListingUnavailable, discoveryErr.Cause)

	var fetchErr *fetcher.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestBill_MarshalJSON(t *testing.T) {
	u, _ := url.Parse("https://example.org/a.pdf")
	data, err := discovery.NewBill("Finance Bill", *u).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Finance Bill","url":"https://example.org/a.pdf"}`, string(data))
}
