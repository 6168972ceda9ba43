package main

import (
	"fmt"
	"net/url"
	"strings"
)

// physicalStores maps each second-hand and new physical retailer to its search URL template.
var physicalStores = map[string]string{
	"amazon":      "https://www.amazon.com/s?k=%s",
	"abebooks":    "https://www.abebooks.com/servlet/SearchResults?isbn=%s",
	"thriftbooks": "https://www.thriftbooks.com/browse/?b.search=%s",
	"alibris":     "https://www.alibris.com/search/books/isbn/%s",
	"ebay":        "https://www.ebay.com/sch/i.html?_nkw=%s",
}

// BuildPhysicalLinks returns the deep search links of every physical retailer for the term.
func BuildPhysicalLinks(term string) map[string]string {
	escaped := encodeURIComponent(term)
	links := make(map[string]string, len(physicalStores))
	for store, tmpl := range physicalStores {
		links[store] = fmt.Sprintf(tmpl, escaped)
	}
	return links
}

// componentUnescaper restores the marks browsers leave untouched in URI components.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeURIComponent escapes s the way browsers escape a URI component.
func encodeURIComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
