package wiki

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Index pages whose link layout needs a page-specific selector.
const (
	PageLegends   = "Legends"
	PageWeapons   = "Weapons"
	PageCosmetics = "Cosmetics"
)

// genericLinkSelector covers index pages laid out as column lists or tables.
const genericLinkSelector = "#mw-content-text .div-col a, #mw-content-text .wikitable a"

// linkSelector returns the anchor selector for an index page.
// Some index pages use bespoke layouts (character grids, sortable weapon
// tables); everything else falls back to the generic selector.
func linkSelector(indexPage string) string {
	switch indexPage {
	case PageLegends:
		return ".character-grid .character-box-link"
	case PageWeapons:
		return ".wikitable.sortable tr td:first-child a"
	case PageCosmetics:
		return ".wikitable tr td:first-child a"
	default:
		return genericLinkSelector
	}
}

// DiscoverLinks returns the deduplicated detail-page slugs linked from an
// index page, in first-seen document order. Only internal wiki links are
// accepted: special/administrative namespaces and edit action links are
// skipped, and fragment identifiers are stripped before deduplication.
func DiscoverLinks(doc *goquery.Document, indexPage string) []string {
	seen := make(map[string]struct{})
	var slugs []string

	doc.Find(linkSelector(indexPage)).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		if !strings.HasPrefix(href, "/wiki/") {
			return
		}
		if strings.Contains(href, ":") || strings.Contains(href, "action=edit") {
			return
		}

		href, _, _ = strings.Cut(href, "#")
		slug := strings.TrimPrefix(href, "/wiki/")
		if slug == "" {
			return
		}
		if _, dup := seen[slug]; dup {
			return
		}
		seen[slug] = struct{}{}
		slugs = append(slugs, slug)
	})

	return slugs
}
