package main

import (
	"context"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// appleSearchResponse keeps the fields of the iTunes search api we need.
type appleSearchResponse struct {
	Results []struct {
		TrackPrice   *float64 `json:"trackPrice"`
		Currency     string   `json:"currency"`
		TrackViewURL string   `json:"trackViewUrl"`
		TrackName    string   `json:"trackName"`
	} `json:"results"`
}

// appleSource searches one media kind of the Apple Books catalog.
type appleSource struct {
	*upstream
	format Format
}

// NewAppleSources provides the ebook and the audiobook searchers. Both share
// the same breaker since they hit the same upstream.
func NewAppleSources(logger *zap.Logger, config *SourcesConfig, client *http.Client) (ebook, audiobook OfferSource) {
	up := newUpstream(logger, "apple", config.AppleURL, config, client)
	return &appleSource{upstream: up, format: FormatEbook}, &appleSource{upstream: up, format: FormatAudiobook}
}

// FetchOffers searches Apple Books for term which is either an isbn or keywords.
func (as *appleSource) FetchOffers(ctx context.Context, term, country string) []Offer {
	offers := []Offer{}
	if term == "" {
		return offers
	}

	ctx, span := as.startSpan(ctx, attribute.String("format", string(as.format)))
	defer span.End()

	params := url.Values{}
	params.Set("country", country)
	params.Set("media", string(as.format))
	params.Set("entity", string(as.format))
	params.Set("term", term)

	var resp appleSearchResponse
	if err := as.getJSON(ctx, as.baseURL+"/search?"+params.Encode(), &resp); err != nil {
		as.fail(ctx, span, err, zap.String("format", string(as.format)))
		return offers
	}

	for _, r := range resp.Results {
		if r.TrackViewURL == "" {
			continue
		}
		offer := Offer{
			Source: SourceApple,
			Format: as.format,
			Link:   r.TrackViewURL,
			Title:  r.TrackName,
		}
		// a missing or zero price means the price is unknown.
		if r.TrackPrice != nil && *r.TrackPrice != 0 {
			offer.Price = NewPrice(*r.TrackPrice, r.Currency)
		}
		offers = append(offers, offer)
	}
	span.SetAttributes(attribute.Int("offers.count", len(offers)))
	return offers
}
