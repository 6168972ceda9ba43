package main

import (
	"errors"
	"math"
)

// ErrMissingQuery is returned when a search carries neither an isbn nor a keyword.
var ErrMissingQuery = errors.New("missing isbn and keyword")

// MissingQueryMessage is the hint sent back to clients on ErrMissingQuery.
const MissingQueryMessage = "Provide ?isbn=978... or ?q=keyword"

// Source names the catalog an offer comes from.
type Source string

const (
	SourceApple  Source = "Apple Books"
	SourceGoogle Source = "Google Play Books"
)

// Format is the kind of digital edition being sold.
type Format string

const (
	FormatEbook     Format = "ebook"
	FormatAudiobook Format = "audiobook"
)

// Price is an amount in a currency as reported by the source. No conversion happens.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// NewPrice returns nil when the amount is not a usable price.
func NewPrice(amount float64, currency string) *Price {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return nil
	}
	if currency == "" {
		currency = "USD"
	}
	return &Price{Amount: amount, Currency: currency}
}

// Offer is a single purchasable digital edition.
type Offer struct {
	Source Source `json:"source"`
	Format Format `json:"format"`
	Price  *Price `json:"price,omitempty"`
	Link   string `json:"link"`
	Title  string `json:"title,omitempty"`
}

// sortKey places offers without a known price after every priced one.
func (o Offer) sortKey() float64 {
	if o.Price == nil {
		return math.Inf(1)
	}
	return o.Price.Amount
}

// Cover holds the Open Library cover image links.
type Cover struct {
	Small string `json:"small,omitempty"`
	Large string `json:"large,omitempty"`
}

// BookMeta is the best-effort bibliographic description of the searched book.
type BookMeta struct {
	Title     string   `json:"title,omitempty"`
	Authors   []string `json:"authors,omitempty"`
	Publisher string   `json:"publisher,omitempty"`
	Year      int      `json:"year,omitempty"`
	Cover     *Cover   `json:"cover,omitempty"`
	ISBN13    string   `json:"isbn13,omitempty"`
}

// Query echoes what was searched. Empty values are serialized as null.
type Query struct {
	ISBN *string `json:"isbn"`
	Q    *string `json:"q"`
}

// NewQuery builds the echoed query from the normalized isbn and the keyword.
func NewQuery(isbn, q string) Query {
	var query Query
	if isbn != "" {
		query.ISBN = &isbn
	}
	if q != "" {
		query.Q = &q
	}
	return query
}

// SearchResult is the consolidated answer to a search.
type SearchResult struct {
	Query         Query             `json:"query"`
	Book          BookMeta          `json:"book"`
	Offers        []Offer           `json:"offers"`
	PhysicalLinks map[string]string `json:"physicalLinks"`
	TS            string            `json:"ts"`
}
