package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type openLibraryBook struct {
	Title   string `json:"title"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Publishers []struct {
		Name string `json:"name"`
	} `json:"publishers"`
	PublishDate string `json:"publish_date"`
}

// openLibrarySource reads bibliographic data from the Open Library books api.
type openLibrarySource struct {
	*upstream
	coversURL string
}

func NewOpenLibrarySource(logger *zap.Logger, config *SourcesConfig, client *http.Client) MetaSource {
	return &openLibrarySource{
		upstream:  newUpstream(logger, "openlibrary", config.OpenLibraryURL, config, client),
		coversURL: config.CoversURL,
	}
}

// FetchMeta returns what Open Library knows about isbn13.
func (ol *openLibrarySource) FetchMeta(ctx context.Context, isbn13 string) BookMeta {
	if isbn13 == "" {
		return BookMeta{}
	}

	ctx, span := ol.startSpan(ctx, attribute.String("isbn", isbn13))
	defer span.End()

	bibkey := "ISBN:" + isbn13
	rawURL := ol.baseURL + "/api/books?bibkeys=" + url.QueryEscape(bibkey) + "&format=json&jscmd=data"

	var resp map[string]openLibraryBook
	if err := ol.getJSON(ctx, rawURL, &resp); err != nil {
		fields := []zap.Field{zap.String("isbn", isbn13)}
		var statusErr *UpstreamStatusError
		if errors.As(err, &statusErr) {
			fields = append(fields, zap.Int("status", statusErr.Code))
		}
		ol.fail(ctx, span, err, fields...)
		return BookMeta{ISBN13: isbn13}
	}

	book := resp[bibkey]
	meta := BookMeta{
		ISBN13: isbn13,
		Title:  book.Title,
		Year:   parsePublishYear(book.PublishDate),
		Cover: &Cover{
			Small: ol.coversURL + "/b/isbn/" + isbn13 + "-M.jpg",
			Large: ol.coversURL + "/b/isbn/" + isbn13 + "-L.jpg",
		},
	}
	for _, a := range book.Authors {
		meta.Authors = append(meta.Authors, a.Name)
	}
	if len(book.Publishers) > 0 {
		meta.Publisher = book.Publishers[0].Name
	}
	return meta
}

// parsePublishYear reads the leading integer of the last four characters
// of a free-form publication date like "March 3, 1999". Zero means unknown.
func parsePublishYear(date string) int {
	runes := []rune(date)
	if len(runes) > 4 {
		runes = runes[len(runes)-4:]
	}
	tail := strings.TrimLeftFunc(string(runes), unicode.IsSpace)
	end := strings.IndexFunc(tail, func(r rune) bool { return r < '0' || r > '9' })
	if end == -1 {
		end = len(tail)
	}
	year, err := strconv.Atoi(tail[:end])
	if err != nil || year <= 0 {
		return 0
	}
	return year
}
