package main

import (
	"context"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type googleVolumesResponse struct {
	Items []struct {
		VolumeInfo struct {
			Title    string `json:"title"`
			InfoLink string `json:"infoLink"`
		} `json:"volumeInfo"`
		SaleInfo struct {
			Saleability string `json:"saleability"`
			BuyLink     string `json:"buyLink"`
			RetailPrice *struct {
				Amount       *float64 `json:"amount"`
				CurrencyCode string   `json:"currencyCode"`
			} `json:"retailPrice"`
		} `json:"saleInfo"`
	} `json:"items"`
}

const googleForSale = "FOR_SALE"

// googleSource looks up Google Play Books ebooks by isbn.
type googleSource struct {
	*upstream
}

func NewGoogleSource(logger *zap.Logger, config *SourcesConfig, client *http.Client) OfferSource {
	return &googleSource{newUpstream(logger, "google", config.GoogleBooksURL, config, client)}
}

// FetchOffers returns the volumes of isbn13 which are for sale with a retail price.
// Keyword searches are not supported so an empty isbn yields no call.
func (gs *googleSource) FetchOffers(ctx context.Context, isbn13, country string) []Offer {
	offers := []Offer{}
	if isbn13 == "" {
		return offers
	}

	ctx, span := gs.startSpan(ctx, attribute.String("format", string(FormatEbook)))
	defer span.End()

	params := url.Values{}
	params.Set("q", "isbn:"+isbn13)
	params.Set("country", country)
	params.Set("maxResults", "10")

	var resp googleVolumesResponse
	if err := gs.getJSON(ctx, gs.baseURL+"/books/v1/volumes?"+params.Encode(), &resp); err != nil {
		gs.fail(ctx, span, err)
		return offers
	}

	for _, it := range resp.Items {
		sale := it.SaleInfo
		if sale.Saleability != googleForSale || sale.RetailPrice == nil || sale.RetailPrice.Amount == nil || *sale.RetailPrice.Amount == 0 {
			continue
		}
		price := NewPrice(*sale.RetailPrice.Amount, sale.RetailPrice.CurrencyCode)
		if price == nil {
			continue
		}
		link := sale.BuyLink
		if link == "" {
			link = it.VolumeInfo.InfoLink
		}
		if link == "" {
			continue
		}
		offers = append(offers, Offer{
			Source: SourceGoogle,
			Format: FormatEbook,
			Price:  price,
			Link:   link,
			Title:  it.VolumeInfo.Title,
		})
	}
	span.SetAttributes(attribute.Int("offers.count", len(offers)))
	return offers
}
