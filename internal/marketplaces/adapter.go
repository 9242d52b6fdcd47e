package marketplaces

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/errors"
)

// Product is the marketplace-side view of a listing.
type Product struct {
	MarketplaceProductID string
	SKU                  string
	Title                string
	Price                decimal.Decimal
	Currency             string
	IsActive             bool
}

// Offer is one competing listing for a product, own offer included.
type Offer struct {
	SellerID           string
	SellerName         string
	IsBuyBoxWinner     bool
	IsOwnOffer         bool
	Price              decimal.Decimal
	ShippingPrice      decimal.Decimal
	FulfillmentChannel enums.FulfillmentChannel
	Rating             float64
	ReviewCount        int
}

// LandedPrice is the offer price including shipping.
func (o Offer) LandedPrice() decimal.Decimal {
	return o.Price.Add(o.ShippingPrice)
}

// PriceUpdate asks the marketplace to set a new listing price.
type PriceUpdate struct {
	SKU                  string
	MarketplaceProductID string
	NewPrice             decimal.Decimal
}

// UpdateResult reports the per-listing outcome of a price submission.
type UpdateResult struct {
	SKU     string
	Success bool
	Error   string
}

// Adapter abstracts one marketplace seller API.
type Adapter interface {
	Marketplace() enums.Marketplace
	GetProduct(ctx context.Context, marketplaceProductID string) (*Product, error)
	GetOffers(ctx context.Context, marketplaceProductID string) ([]Offer, error)
	UpdatePrices(ctx context.Context, updates []PriceUpdate) ([]UpdateResult, error)
}

// Registry resolves adapters by marketplace.
type Registry struct {
	adapters map[enums.Marketplace]Adapter
}

// NewRegistry indexes the provided adapters by their marketplace.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	indexed := make(map[enums.Marketplace]Adapter, len(adapters))
	for _, adapter := range adapters {
		if adapter == nil {
			return nil, fmt.Errorf("marketplaces: nil adapter")
		}
		marketplace := adapter.Marketplace()
		if _, exists := indexed[marketplace]; exists {
			return nil, fmt.Errorf("marketplaces: duplicate adapter for %s", marketplace)
		}
		indexed[marketplace] = adapter
	}
	return &Registry{adapters: indexed}, nil
}

// Adapter returns the adapter registered for the marketplace.
func (r *Registry) Adapter(marketplace enums.Marketplace) (Adapter, error) {
	adapter, ok := r.adapters[marketplace]
	if !ok {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("no adapter registered for marketplace %s", marketplace))
	}
	return adapter, nil
}

// Marketplaces lists the registered marketplaces.
func (r *Registry) Marketplaces() []enums.Marketplace {
	out := make([]enums.Marketplace, 0, len(r.adapters))
	for marketplace := range r.adapters {
		out = append(out, marketplace)
	}
	return out
}
