package marketplaces

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/config"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/errors"
)

// AmazonAdapter talks to the Amazon seller API for one configured seller.
type AmazonAdapter struct {
	client   *resty.Client
	limiter  *rate.Limiter
	sellerID string
}

type amazonProductDTO struct {
	ASIN     string `json:"asin"`
	SKU      string `json:"sellerSku"`
	Title    string `json:"itemName"`
	Price    string `json:"price"`
	Currency string `json:"currencyCode"`
	Status   string `json:"status"`
}

type amazonOfferDTO struct {
	SellerID      string  `json:"sellerId"`
	SellerName    string  `json:"sellerName"`
	IsBuyBox      bool    `json:"isBuyBoxWinner"`
	ListingPrice  string  `json:"listingPrice"`
	ShippingPrice string  `json:"shippingPrice"`
	Fulfillment   string  `json:"fulfillmentChannel"`
	Rating        float64 `json:"sellerFeedbackRating"`
	ReviewCount   int     `json:"sellerFeedbackCount"`
}

type amazonOffersResponseDTO struct {
	Offers []amazonOfferDTO `json:"offers"`
}

type amazonPriceUpdateDTO struct {
	SKU   string `json:"sellerSku"`
	ASIN  string `json:"asin"`
	Price string `json:"price"`
}

type amazonUpdateResultDTO struct {
	SKU     string `json:"sellerSku"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type amazonUpdateResponseDTO struct {
	Results []amazonUpdateResultDTO `json:"results"`
}

// NewAmazonAdapter builds the adapter from configuration.
func NewAmazonAdapter(cfg config.AmazonConfig) (*AmazonAdapter, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("amazon adapter requires a base URL")
	}
	if cfg.SellerID == "" {
		return nil, fmt.Errorf("amazon adapter requires a seller id")
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("x-amz-access-token", cfg.APIKey).
		SetHeader("Accept", "application/json")

	return &AmazonAdapter{
		client:   client,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		sellerID: cfg.SellerID,
	}, nil
}

func (a *AmazonAdapter) Marketplace() enums.Marketplace {
	return enums.MarketplaceAmazon
}

func (a *AmazonAdapter) GetProduct(ctx context.Context, marketplaceProductID string) (*Product, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var dto amazonProductDTO
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(&dto).
		Get(fmt.Sprintf("/listings/2021-08-01/items/%s/%s", a.sellerID, marketplaceProductID))
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "amazon product lookup failed")
	}
	if resp.StatusCode() == 404 {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("amazon product %s not found", marketplaceProductID))
	}
	if resp.IsError() {
		return nil, errors.New(errors.CodeDependency, fmt.Sprintf("amazon product lookup returned status %d", resp.StatusCode()))
	}

	price, err := decimal.NewFromString(dto.Price)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "amazon returned an unparseable price")
	}

	return &Product{
		MarketplaceProductID: dto.ASIN,
		SKU:                  dto.SKU,
		Title:                dto.Title,
		Price:                price,
		Currency:             dto.Currency,
		IsActive:             dto.Status == "ACTIVE",
	}, nil
}

func (a *AmazonAdapter) GetOffers(ctx context.Context, marketplaceProductID string) ([]Offer, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var dto amazonOffersResponseDTO
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(&dto).
		Get(fmt.Sprintf("/products/pricing/v0/items/%s/offers", marketplaceProductID))
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "amazon offers lookup failed")
	}
	if resp.IsError() {
		return nil, errors.New(errors.CodeDependency, fmt.Sprintf("amazon offers lookup returned status %d", resp.StatusCode()))
	}

	offers := make([]Offer, 0, len(dto.Offers))
	for _, raw := range dto.Offers {
		price, err := decimal.NewFromString(raw.ListingPrice)
		if err != nil {
			continue
		}
		shipping := decimal.Zero
		if raw.ShippingPrice != "" {
			if parsed, err := decimal.NewFromString(raw.ShippingPrice); err == nil {
				shipping = parsed
			}
		}
		offers = append(offers, Offer{
			SellerID:           raw.SellerID,
			SellerName:         raw.SellerName,
			IsBuyBoxWinner:     raw.IsBuyBox,
			IsOwnOffer:         raw.SellerID == a.sellerID,
			Price:              price,
			ShippingPrice:      shipping,
			FulfillmentChannel: parseAmazonFulfillment(raw.Fulfillment),
			Rating:             raw.Rating,
			ReviewCount:        raw.ReviewCount,
		})
	}
	return offers, nil
}

func (a *AmazonAdapter) UpdatePrices(ctx context.Context, updates []PriceUpdate) ([]UpdateResult, error) {
	if len(updates) == 0 {
		return nil, nil
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload := make([]amazonPriceUpdateDTO, 0, len(updates))
	for _, update := range updates {
		payload = append(payload, amazonPriceUpdateDTO{
			SKU:   update.SKU,
			ASIN:  update.MarketplaceProductID,
			Price: update.NewPrice.StringFixed(2),
		})
	}

	var dto amazonUpdateResponseDTO
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"sellerId": a.sellerID, "updates": payload}).
		SetResult(&dto).
		Patch("/listings/2021-08-01/items/prices")
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "amazon price update failed")
	}
	if resp.IsError() {
		return nil, errors.New(errors.CodeDependency, fmt.Sprintf("amazon price update returned status %d", resp.StatusCode()))
	}

	results := make([]UpdateResult, 0, len(dto.Results))
	for _, raw := range dto.Results {
		results = append(results, UpdateResult{
			SKU:     raw.SKU,
			Success: raw.Status == "ACCEPTED",
			Error:   raw.Message,
		})
	}
	return results, nil
}

func parseAmazonFulfillment(value string) enums.FulfillmentChannel {
	switch value {
	case "AFN":
		return enums.FulfillmentChannelPlatform
	case "MFN":
		return enums.FulfillmentChannelMerchant
	default:
		return enums.FulfillmentChannelUnknown
	}
}
