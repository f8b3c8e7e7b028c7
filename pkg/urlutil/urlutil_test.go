package urlutil_test

import (
	"net/url"
	"testing"

	"github.com/rohmanhakim/billtext/pkg/urlutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func TestResolve(t *testing.T) {
	base := mustParse(t, "https://www.parliament.go.ke")

	tests := []struct {
		name string
		href string
		want string
	}{
		{name: "root relative", href: "/sites/default/files/2024-05/Finance Bill.pdf", want: "https://www.parliament.go.ke/sites/default/files/2024-05/Finance%20Bill.pdf"},
		{name: "relative", href: "docs/a.pdf", want: "https://www.parliament.go.ke/docs/a.pdf"},
		{name: "absolute", href: "http://other.example/x.pdf", want: "http://other.example/x.pdf"},
		{name: "protocol relative", href: "//cdn.example/x.pdf", want: "https://cdn.example/x.pdf"},
		{name: "surrounding whitespace", href: "  /a.pdf ", want: "https://www.parliament.go.ke/a.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := urlutil.Resolve(base, tt.href)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestResolve_InvalidHref(t *testing.T) {
	base := mustParse(t, "https://example.com")
	_, err := urlutil.Resolve(base, "http://[::1")
	assert.Error(t, err)
}

func TestOrigin(t *testing.T) {
	u := mustParse(t, "https://www.parliament.go.ke/the-national-assembly/house-business/bills?page=2")
	origin := urlutil.Origin(u)
	assert.Equal(t, "https://www.parliament.go.ke", origin.String())
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "HTTPS://Example.COM:443/Bill.pdf", want: "https://example.com/Bill.pdf"},
		{in: "http://example.com:80/a.pdf#page=2", want: "http://example.com/a.pdf"},
		{in: "https://example.com/a.pdf?v=2", want: "https://example.com/a.pdf?v=2"},
		{in: "https://example.com:8443/a.pdf", want: "https://example.com:8443/a.pdf"},
	}

	for _, tt := range tests {
		got := urlutil.Canonicalize(mustParse(t, tt.in))
		assert.Equal(t, tt.want, got.String(), tt.in)

		again := urlutil.Canonicalize(got)
		assert.Equal(t, got.String(), again.String(), "idempotent for %s", tt.in)
	}
}

func TestIsHTTP(t *testing.T) {
	assert.True(t, urlutil.IsHTTP(mustParse(t, "https://a.b")))
	assert.False(t, urlutil.IsHTTP(mustParse(t, "mailto:clerk@parliament.go.ke")))
}
