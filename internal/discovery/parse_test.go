package discovery

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSegments = []string{"sites/default/files"}

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func titles(bills []Bill) []string {
	out := make([]string, 0, len(bills))
	for _, b := range bills {
		out = append(out, b.Title())
	}
	return out
}

func urls(bills []Bill) []string {
	out := make([]string, 0, len(bills))
	for _, b := range bills {
		u := b.URL()
		out = append(out, u.String())
	}
	return out
}

func TestParseBills_FiltersCandidatesAndTitles(t *testing.T) {
	listing := `<html><body>
		<a href="/sites/default/files/2024-05/Finance_Bill_2024.pdf">The Finance Bill, 2024</a>
		<a href="/sites/default/files/2024-05/Finance_Bill_2024.pdf">Download</a>
		<a href="/docs/Housing%20Bill.PDF">  Affordable   Housing
			Bill  </a>
		<a href="/sites/default/files/report.docx">Committee report on the bill</a>
		<a href="/about">About the Bill Office</a>
		<a href="/x.pdf">Bill</a>
		<a href="/y.pdf"></a>
		<a href="mailto:clerk@example.org">Email the bills office</a>
	</body></html>`

	bills, stats, err := parseBills(mustURL(t, "https://www.parliament.go.ke/some/page"), testSegments, []byte(listing))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"The Finance Bill, 2024",
		"Affordable Housing Bill",
		"Committee report on the bill",
	}, titles(bills))
	assert.Equal(t, []string{
		"https://www.parliament.go.ke/sites/default/files/2024-05/Finance_Bill_2024.pdf",
		"https://www.parliament.go.ke/docs/Housing%20Bill.PDF",
		"https://www.parliament.go.ke/sites/default/files/report.docx",
	}, urls(bills))

	assert.Equal(t, 6, stats.candidates)
	assert.Equal(t, 3, stats.accepted)
}

func TestParseBills_DedupByResolvedURL(t *testing.T) {
	listing := `<html><body>
		<a href="/sites/default/files/a.pdf">Finance Bill 2024 (first reading)</a>
		<a href="/sites/default/files/b.pdf">Health Bill 2024</a>
		<a href="https://www.parliament.go.ke/sites/default/files/a.pdf#page=2">Finance Bill 2024 (as passed)</a>
		<a href="HTTPS://WWW.PARLIAMENT.GO.KE:443/sites/default/files/b.pdf">HEALTH BILL 2024</a>
	</body></html>`

	bills, _, err := parseBills(mustURL(t, "https://www.parliament.go.ke"), testSegments, []byte(listing))
	require.NoError(t, err)

	require.Len(t, bills, 2)
	assert.Equal(t, "https://www.parliament.go.ke/sites/default/files/a.pdf#page=2", urls(bills)[0], "last seen anchor wins")
	assert.Equal(t, "Finance Bill 2024 (as passed)", bills[0].Title(), "last seen title wins")
	assert.Equal(t, "HEALTH BILL 2024", bills[1].Title())
}

func TestParseBills_KeepsResolvedURLAsWritten(t *testing.T) {
	listing := `<html><body>
		<a href="https://www.parliament.go.ke:443/sites/default/files/a.pdf#page=2">Finance Bill 2024</a>
		<a href="/sites/default/files/b.pdf?v=3">Health Bill 2024</a>
	</body></html>`

	bills, _, err := parseBills(mustURL(t, "https://www.parliament.go.ke"), testSegments, []byte(listing))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.parliament.go.ke:443/sites/default/files/a.pdf#page=2",
		"https://www.parliament.go.ke/sites/default/files/b.pdf?v=3",
	}, urls(bills))
}

func TestParseBills_TitleLengthBoundary(t *testing.T) {
	listing := `<html><body>
		<a href="/a.pdf">BILLS</a>
		<a href="/b.pdf">A BILL</a>
	</body></html>`

	bills, _, err := parseBills(mustURL(t, "https://example.org"), nil, []byte(listing))
	require.NoError(t, err)

	assert.Equal(t, []string{"A BILL"}, titles(bills), "five characters is not enough")
}

func TestParseBills_RelativeHrefResolvesAgainstOrigin(t *testing.T) {
	listing := `<a href="sites/default/files/c.pdf">Water Bill 2023</a>`

	bills, _, err := parseBills(mustURL(t, "https://example.org/the-national-assembly/bills"), testSegments, []byte(listing))
	require.NoError(t, err)

	require.Len(t, bills, 1)
	assert.Equal(t, "https://example.org/sites/default/files/c.pdf", urls(bills)[0])
}

func TestParseBills_NoLinks(t *testing.T) {
	bills, stats, err := parseBills(mustURL(t, "https://example.org"), testSegments, []byte(`<html><body><p>Nothing here</p></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, bills)
	assert.Zero(t, stats.candidates)
}

func TestLooksLikeBill(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"The Finance Bill, 2024", true},
		{"finance bill", true},
		{"Download", false},
		{"", false},
		{"BILLS", false},
		{"Billboard regulations", true},
		{"Statute Law (Miscellaneous Amendments)", false},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, looksLikeBill(tt.title))
		})
	}
}

func TestIsDocumentLink(t *testing.T) {
	assert.True(t, isDocumentLink("/files/x.pdf", nil))
	assert.True(t, isDocumentLink("/files/x.PDF?download=1", nil))
	assert.True(t, isDocumentLink("/sites/default/files/x", testSegments))
	assert.False(t, isDocumentLink("/files/x.html", testSegments))
	assert.False(t, isDocumentLink("", testSegments))
}
