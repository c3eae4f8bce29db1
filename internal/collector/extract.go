package collector

import (
	"fmt"
	"net/url"
	"strings"

	"sjsage522/taglikeworker/helpers"
	"sjsage522/taglikeworker/internal"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	// ItemPath is the path segment every item detail link carries
	ItemPath = "p"

	// itemLinkSelector matches anchors pointing at item detail pages
	itemLinkSelector = `a[href*="/p/"]`

	// Position of the path name and the id in a link path split by "/":
	// ["", "p", id, ""]
	itemPathIndex = 1
	itemIDIndex   = 2
)

// ListingScript returns the rendered DOM of the current page
const ListingScript = `document.documentElement.outerHTML`

// ExtractContentIDs returns the ids linked from a rendered listing page, in
// document order and without duplicates. Links that do not have the item
// shape are skipped.
func ExtractContentIDs(document string, pageURL string) ([]internal.ContentID, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}

	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	seen := make(map[internal.ContentID]struct{})
	var ids []internal.ContentID
	doc.Find(itemLinkSelector).Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}
		id, ok := contentIDFromLink(base, href)
		if !ok {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	})

	return ids, nil
}

// contentIDFromLink resolves href against base and takes the id segment
func contentIDFromLink(base *url.URL, href string) (internal.ContentID, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	// Path is unescaped, so ids are kept in their decoded form
	path := base.ResolveReference(ref).Path
	if segment, err := helpers.GetSplitPart(path, "/", itemPathIndex); err != nil || segment != ItemPath {
		return "", false
	}
	id, err := helpers.GetSplitPart(path, "/", itemIDIndex)
	if err != nil || id == "" {
		return "", false
	}
	return internal.ContentID(id), true
}
