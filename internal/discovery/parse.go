package discovery

import (
	"bytes"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/billtext/pkg/fileutil"
	"github.com/rohmanhakim/billtext/pkg/urlutil"
	"golang.org/x/net/html"
)

const (
	minTitleLength = 5
	titleKeyword   = "BILL"
	documentExt    = "pdf"
)

// parseBills walks every anchor of the listing and keeps the ones that point
// at a document and read like a bill title. One Bill survives per resolved
// URL: it stays at the position the URL was first seen, carrying the title
// and href of the last anchor that pointed at it. The canonical form is only
// the dedup key; the Bill keeps the resolved URL as written.
func parseBills(baseUrl url.URL, pathSegments []string, htmlByte []byte) ([]Bill, parseStats, error) {
	root, err := html.Parse(bytes.NewReader(htmlByte))
	if err != nil {
		return nil, parseStats{}, err
	}
	doc := goquery.NewDocumentFromNode(root)
	origin := urlutil.Origin(baseUrl)

	var stats parseStats
	var bills []Bill
	position := make(map[string]int)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if !isDocumentLink(href, pathSegments) {
			return
		}
		stats.candidates++

		title := collapseSpace(s.Text())
		if !looksLikeBill(title) {
			return
		}

		resolved, err := urlutil.Resolve(origin, href)
		if err != nil || !urlutil.IsHTTP(resolved) {
			return
		}
		stats.accepted++

		canonical := urlutil.Canonicalize(resolved)
		key := canonical.String()
		if i, seen := position[key]; seen {
			bills[i] = NewBill(title, resolved)
			return
		}
		position[key] = len(bills)
		bills = append(bills, NewBill(title, resolved))
	})

	return bills, stats, nil
}

func isDocumentLink(href string, pathSegments []string) bool {
	if href == "" {
		return false
	}
	path := href
	if ref, err := url.Parse(href); err == nil {
		path = ref.Path
	}
	if fileutil.GetFileExtension(path) == documentExt {
		return true
	}
	for _, segment := range pathSegments {
		if segment != "" && strings.Contains(href, segment) {
			return true
		}
	}
	return false
}

func looksLikeBill(title string) bool {
	return utf8.RuneCountInString(title) > minTitleLength &&
		strings.Contains(strings.ToUpper(title), titleKeyword)
}

// collapseSpace trims the anchor text and folds inner whitespace runs into one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
