package duckduckgo

import (
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Result markup drifts, so several selector patterns are tried: title links,
// the visible-URL spans, then any anchor inside the results area.
var resultSelectors = []string{
	"a.result__a",
	"a.result__url",
	".results a[href]",
	"#links a[href]",
}

var uddgParamRegex = regexp.MustCompile(`uddg=([^&]+)`)

// extractCandidates parses a search-results page into absolute candidate
// URLs, in page order and de-duplicated.
func extractCandidates(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var candidates []string
	for _, selector := range resultSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok {
				return
			}
			candidate := normalizeCandidate(href)
			if candidate == "" {
				return
			}
			if _, dup := seen[candidate]; dup {
				return
			}
			seen[candidate] = struct{}{}
			candidates = append(candidates, candidate)
		})
	}
	return candidates, nil
}

// normalizeCandidate unwraps redirect links and returns an absolute URL, or
// "" when the reference cannot be resolved to one.
func normalizeCandidate(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	if decoded, ok := decodeRedirect(href); ok {
		href = decoded
	}

	if !strings.Contains(href, "://") && !strings.HasPrefix(href, "/") {
		href = "https://" + href
	}
	if strings.HasPrefix(href, "/") {
		// Site-relative link with no resolvable host.
		return ""
	}
	return href
}

// decodeRedirect extracts the embedded destination from a redirect-wrapper
// link ("/l/?uddg=<encoded>"). Malformed wrapper syntax falls back to a regex
// scan rather than dropping the whole page.
func decodeRedirect(href string) (string, bool) {
	if !strings.Contains(href, "uddg=") {
		return "", false
	}

	if parsed, err := url.Parse(href); err == nil {
		if target := parsed.Query().Get("uddg"); target != "" {
			return target, true
		}
	}

	match := uddgParamRegex.FindStringSubmatch(href)
	if len(match) != 2 {
		return "", false
	}
	decoded, err := url.QueryUnescape(match[1])
	if err != nil {
		return "", false
	}
	return decoded, true
}
