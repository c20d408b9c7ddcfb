package setlist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/zetachan/encore/internal/shared"
)

// Scraper fetches and parses setlist.fm concert pages.
type Scraper struct {
	httpClient *http.Client
	userAgent  string
}

// NewScraper creates a Scraper with the given timeout and User-Agent.
// setlist.fm rejects requests without a UA, so an empty one gets a default.
func NewScraper(timeout time.Duration, userAgent string) *Scraper {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if userAgent == "" {
		userAgent = "encore/0.1"
	}
	return &Scraper{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// Fetch downloads a setlist page and extracts the setlist.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (*Setlist, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid setlist URL: %v", shared.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: setlist.fm returned status %d", shared.ErrUpstream, resp.StatusCode)
	}

	return Parse(resp.Body)
}

// Parse extracts a Setlist from setlist.fm page HTML.
func Parse(r io.Reader) (*Setlist, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed page HTML: %v", shared.ErrScrape, err)
	}

	sl := &Setlist{
		Artist:    strings.TrimSpace(findArtist(doc)),
		EventDate: strings.TrimSpace(findEventDate(doc)),
		Venue:     strings.TrimSpace(findVenue(doc)),
		Songs:     SplitSongs(findSongLines(doc)),
	}
	sl.City = CityFromVenue(sl.Venue)

	if err := sl.validate(); err != nil {
		return nil, err
	}
	return sl, nil
}

// findSongLines collects the text of every song label anchor, one raw
// line per performed entry (medleys still joined by "/").
func findSongLines(doc *html.Node) []string {
	var lines []string
	walk(doc, func(n *html.Node) bool {
		if isElement(n, "a") && hasClass(n, "songLabel") {
			if text := nodeText(n); text != "" {
				lines = append(lines, text)
			}
			return false
		}
		return true
	})
	return lines
}

func findArtist(doc *html.Node) string {
	// Breadcrumb artist link, falling back to the headline anchor.
	if n := findFirst(doc, func(n *html.Node) bool {
		if !isElement(n, "a") || !strings.Contains(attr(n, "href"), "/setlists/") {
			return false
		}
		for p := n.Parent; p != nil; p = p.Parent {
			if isElement(p, "div") && hasClass(p, "breadcrumb") {
				return true
			}
		}
		return false
	}); n != nil {
		return nodeText(n)
	}

	if n := findFirst(doc, func(n *html.Node) bool {
		if !isElement(n, "a") {
			return false
		}
		for p := n.Parent; p != nil; p = p.Parent {
			if isElement(p, "h1") && (hasClass(p, "artist-header") || hasClass(p, "setlistHeadline")) {
				return true
			}
		}
		return false
	}); n != nil {
		return nodeText(n)
	}

	return ""
}

func findEventDate(doc *html.Node) string {
	if n := findFirst(doc, func(n *html.Node) bool {
		return isElement(n, "div") && hasClass(n, "eventDate")
	}); n != nil {
		return nodeText(n)
	}

	if n := findFirst(doc, func(n *html.Node) bool {
		return isElement(n, "span") && hasClass(n, "value") && attr(n, "itemprop") == "startDate"
	}); n != nil {
		return nodeText(n)
	}

	if n := findFirst(doc, func(n *html.Node) bool {
		return hasClass(n, "dateBlock")
	}); n != nil {
		return nodeText(n)
	}

	return ""
}

func findVenue(doc *html.Node) string {
	if n := findFirst(doc, func(n *html.Node) bool {
		return isElement(n, "a") && strings.Contains(attr(n, "href"), "/venue/") && n.Parent != nil && isElement(n.Parent, "span")
	}); n != nil {
		return nodeText(n)
	}
	return ""
}

// walk visits nodes depth-first; fn returning false prunes the subtree.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(n, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// nodeText concatenates all text under a node, whitespace-collapsed.
func nodeText(n *html.Node) string {
	var b strings.Builder
	walk(n, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true
	})
	return strings.Join(strings.Fields(b.String()), " ")
}
