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

// TakealotAdapter talks to the Takealot seller API. Takealot exposes landed
// prices only, so shipping is always reported as zero.
type TakealotAdapter struct {
	client  *resty.Client
	limiter *rate.Limiter
}

type takealotOfferDTO struct {
	TSIN          string `json:"tsin_id"`
	SKU           string `json:"sku"`
	Title         string `json:"title"`
	SellingPrice  string `json:"selling_price"`
	Status        string `json:"status"`
	LeadTimeStock bool   `json:"lead_time_advertisement"`
}

type takealotCompetitorDTO struct {
	SellerName   string  `json:"seller_name"`
	IsWinner     bool    `json:"is_buy_box_winner"`
	IsOwn        bool    `json:"is_own_offer"`
	SellingPrice string  `json:"selling_price"`
	LeadTime     bool    `json:"lead_time"`
	Rating       float64 `json:"seller_rating"`
	ReviewCount  int     `json:"review_count"`
}

type takealotCompetitorsResponseDTO struct {
	Competitors []takealotCompetitorDTO `json:"competitors"`
}

type takealotPriceResultDTO struct {
	SKU     string `json:"sku"`
	Applied bool   `json:"applied"`
	Message string `json:"message"`
}

type takealotPriceResponseDTO struct {
	Results []takealotPriceResultDTO `json:"results"`
}

// NewTakealotAdapter builds the adapter from configuration.
func NewTakealotAdapter(cfg config.TakealotConfig) (*TakealotAdapter, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("takealot adapter requires a base URL")
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", "Key "+cfg.APIKey).
		SetHeader("Accept", "application/json")

	return &TakealotAdapter{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
	}, nil
}

func (t *TakealotAdapter) Marketplace() enums.Marketplace {
	return enums.MarketplaceTakealot
}

func (t *TakealotAdapter) GetProduct(ctx context.Context, marketplaceProductID string) (*Product, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var dto takealotOfferDTO
	resp, err := t.client.R().
		SetContext(ctx).
		SetResult(&dto).
		Get(fmt.Sprintf("/v2/offers/offer/tsin/%s", marketplaceProductID))
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "takealot offer lookup failed")
	}
	if resp.StatusCode() == 404 {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("takealot offer %s not found", marketplaceProductID))
	}
	if resp.IsError() {
		return nil, errors.New(errors.CodeDependency, fmt.Sprintf("takealot offer lookup returned status %d", resp.StatusCode()))
	}

	price, err := decimal.NewFromString(dto.SellingPrice)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "takealot returned an unparseable price")
	}

	return &Product{
		MarketplaceProductID: dto.TSIN,
		SKU:                  dto.SKU,
		Title:                dto.Title,
		Price:                price,
		Currency:             "ZAR",
		IsActive:             dto.Status == "Buyable",
	}, nil
}

func (t *TakealotAdapter) GetOffers(ctx context.Context, marketplaceProductID string) ([]Offer, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var dto takealotCompetitorsResponseDTO
	resp, err := t.client.R().
		SetContext(ctx).
		SetResult(&dto).
		Get(fmt.Sprintf("/v2/offers/offer/tsin/%s/competitors", marketplaceProductID))
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "takealot competitors lookup failed")
	}
	if resp.IsError() {
		return nil, errors.New(errors.CodeDependency, fmt.Sprintf("takealot competitors lookup returned status %d", resp.StatusCode()))
	}

	offers := make([]Offer, 0, len(dto.Competitors))
	for _, raw := range dto.Competitors {
		price, err := decimal.NewFromString(raw.SellingPrice)
		if err != nil {
			continue
		}
		channel := enums.FulfillmentChannelPlatform
		if raw.LeadTime {
			channel = enums.FulfillmentChannelLeadTime
		}
		offers = append(offers, Offer{
			SellerName:         raw.SellerName,
			IsBuyBoxWinner:     raw.IsWinner,
			IsOwnOffer:         raw.IsOwn,
			Price:              price,
			ShippingPrice:      decimal.Zero,
			FulfillmentChannel: channel,
			Rating:             raw.Rating,
			ReviewCount:        raw.ReviewCount,
		})
	}
	return offers, nil
}

func (t *TakealotAdapter) UpdatePrices(ctx context.Context, updates []PriceUpdate) ([]UpdateResult, error) {
	if len(updates) == 0 {
		return nil, nil
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload := make([]map[string]any, 0, len(updates))
	for _, update := range updates {
		payload = append(payload, map[string]any{
			"sku":           update.SKU,
			"tsin_id":       update.MarketplaceProductID,
			"selling_price": update.NewPrice.StringFixed(2),
		})
	}

	var dto takealotPriceResponseDTO
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"offers": payload}).
		SetResult(&dto).
		Patch("/v2/offers/prices")
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "takealot price update failed")
	}
	if resp.IsError() {
		return nil, errors.New(errors.CodeDependency, fmt.Sprintf("takealot price update returned status %d", resp.StatusCode()))
	}

	results := make([]UpdateResult, 0, len(dto.Results))
	for _, raw := range dto.Results {
		results = append(results, UpdateResult{
			SKU:     raw.SKU,
			Success: raw.Applied,
			Error:   raw.Message,
		})
	}
	return results, nil
}
