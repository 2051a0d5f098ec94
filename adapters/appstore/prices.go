// Package appstore - Price schedule and price point endpoints
package appstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"appstore-pricing/core/resolver"
	"appstore-pricing/core/types"
	"appstore-pricing/internal/errors"
	"appstore-pricing/internal/logging"
)

// PriceAPI implements the reconciler's storefront capabilities: price
// schedule reads, per-territory price point reads, and the atomic batch
// price write.
type PriceAPI struct {
	client *Client
}

// NewPriceAPI creates the price API over a client
func NewPriceAPI(client *Client) *PriceAPI {
	return &PriceAPI{client: client}
}

// PriceSchedule returns the item's current price schedule and its base
// territory. A missing schedule surfaces as an unknown item.
func (a *PriceAPI) PriceSchedule(ctx context.Context, item types.ItemID) (resolver.Schedule, error) {
	var doc single
	err := a.client.get(ctx, fmt.Sprintf("/v2/inAppPurchases/%s/iapPriceSchedule", item), &doc)
	if err != nil {
		if errors.IsType(err, errors.TypeUnknownItem) {
			return resolver.Schedule{}, errors.UnknownItem(string(item))
		}
		return resolver.Schedule{}, err
	}
	if doc.Data == nil {
		return resolver.Schedule{}, errors.UnknownItem(string(item))
	}

	// The baseTerritory relationship is link-only; follow it.
	link := doc.Data.relatedLink("baseTerritory")
	if link == "" {
		return resolver.Schedule{}, errors.Newf(errors.TypeInternal,
			"price schedule %s has no base territory link", doc.Data.ID)
	}

	var base single
	if err := a.client.get(ctx, link, &base); err != nil {
		return resolver.Schedule{}, err
	}
	if base.Data == nil {
		return resolver.Schedule{}, errors.Newf(errors.TypeInternal,
			"base territory missing at %s", link)
	}

	return resolver.Schedule{
		ID:            doc.Data.ID,
		BaseTerritory: types.Territory(base.Data.ID),
	}, nil
}

// AutomaticPrices returns the storefront-calculated price per territory
func (a *PriceAPI) AutomaticPrices(ctx context.Context, scheduleID string) (map[types.Territory]types.CurrentPrice, error) {
	return a.schedulePrices(ctx, scheduleID, "automaticPrices")
}

// ManualPrices returns the explicit manual override per territory
func (a *PriceAPI) ManualPrices(ctx context.Context, scheduleID string) (map[types.Territory]types.CurrentPrice, error) {
	return a.schedulePrices(ctx, scheduleID, "manualPrices")
}

// schedulePrices reads one price relationship of a schedule. Price point
// and territory resources ride along in the same request via include, so
// no extra calls are needed. A 404 means the relationship has no entries.
func (a *PriceAPI) schedulePrices(ctx context.Context, scheduleID, relationship string) (map[types.Territory]types.CurrentPrice, error) {
	query := url.Values{}
	query.Set("include", "inAppPurchasePricePoint,territory")
	query.Set("limit", "200")
	path := fmt.Sprintf("/v1/inAppPurchasePriceSchedules/%s/%s?%s", scheduleID, relationship, query.Encode())

	data, included, err := a.client.getAllPages(ctx, path)
	if err != nil {
		if errors.IsType(err, errors.TypeUnknownItem) {
			return map[types.Territory]types.CurrentPrice{}, nil
		}
		return nil, err
	}

	prices := make(map[types.Territory]types.CurrentPrice, len(data))
	for _, price := range data {
		territory := price.relatedID("territory")
		if territory == "" {
			continue
		}
		point, ok := included[price.relatedID("inAppPurchasePricePoint")]
		if !ok {
			continue
		}
		amount, err := pointAmount(point)
		if err != nil {
			logging.Warn("skipping malformed price point",
				zap.String("schedule", scheduleID),
				zap.String("territory", territory),
				zap.Error(err))
			continue
		}
		prices[types.Territory(territory)] = types.CurrentPrice{
			Territory: types.Territory(territory),
			Amount:    amount,
		}
	}
	return prices, nil
}

// PricePoints returns every legal price point for the item in a territory
func (a *PriceAPI) PricePoints(ctx context.Context, item types.ItemID, territory types.Territory) ([]types.PricePoint, error) {
	query := url.Values{}
	query.Set("filter[territory]", string(territory))
	query.Set("limit", "8000")
	path := fmt.Sprintf("/v2/inAppPurchases/%s/pricePoints?%s", item, query.Encode())

	data, _, err := a.client.getAllPages(ctx, path)
	if err != nil {
		return nil, err
	}

	points := make([]types.PricePoint, 0, len(data))
	for _, p := range data {
		amount, err := pointAmount(p)
		if err != nil {
			continue
		}
		points = append(points, types.PricePoint{
			ID:        p.ID,
			Territory: territory,
			Amount:    amount,
		})
	}
	return points, nil
}

// ApplyPrices submits the full-replacement manual price schedule for the
// plan's item in one atomic call
func (a *PriceAPI) ApplyPrices(ctx context.Context, plan *types.UpdatePlan) error {
	refs := make([]resourceRef, 0, len(plan.Decisions))
	included := make([]includedPrice, 0, len(plan.Decisions))

	for _, d := range plan.Decisions {
		// Local reference id, identical in data and included.
		ref := fmt.Sprintf("${price-%s}", d.Territory)
		refs = append(refs, resourceRef{Type: "inAppPurchasePrices", ID: ref})
		included = append(included, includedPrice{
			Type:       "inAppPurchasePrices",
			ID:         ref,
			Attributes: priceAttributes{StartDate: nil},
			Relationships: priceRelationships{
				PricePoint: relationshipData{
					Data: resourceRef{Type: "inAppPurchasePricePoints", ID: d.Chosen.ID},
				},
			},
		})
	}

	body := scheduleCreateRequest{
		Data: scheduleCreateData{
			Type: "inAppPurchasePriceSchedules",
			Relationships: scheduleRelationships{
				InAppPurchase: relationshipData{
					Data: resourceRef{Type: "inAppPurchases", ID: string(plan.ItemID)},
				},
				BaseTerritory: relationshipData{
					Data: resourceRef{Type: "territories", ID: string(plan.BaseTerritory)},
				},
				ManualPrices: relationshipList{Data: refs},
			},
		},
		Included: included,
	}

	return a.client.post(ctx, "/v1/inAppPurchasePriceSchedules", body, nil)
}

// pointAmount parses a price point's customer price
func pointAmount(point resource) (decimal.Decimal, error) {
	var attrs pricePointAttributes
	if err := json.Unmarshal(point.Attributes, &attrs); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(attrs.CustomerPrice)
}

// Write payload shapes for POST /v1/inAppPurchasePriceSchedules

type scheduleCreateRequest struct {
	Data     scheduleCreateData `json:"data"`
	Included []includedPrice    `json:"included"`
}

type scheduleCreateData struct {
	Type          string                `json:"type"`
	Attributes    struct{}              `json:"attributes"`
	Relationships scheduleRelationships `json:"relationships"`
}

type scheduleRelationships struct {
	InAppPurchase relationshipData `json:"inAppPurchase"`
	BaseTerritory relationshipData `json:"baseTerritory"`
	ManualPrices  relationshipList `json:"manualPrices"`
}

type relationshipData struct {
	Data resourceRef `json:"data"`
}

type relationshipList struct {
	Data []resourceRef `json:"data"`
}

type includedPrice struct {
	Type          string             `json:"type"`
	ID            string             `json:"id"`
	Attributes    priceAttributes    `json:"attributes"`
	Relationships priceRelationships `json:"relationships"`
}

type priceAttributes struct {
	StartDate *string `json:"startDate"`
}

type priceRelationships struct {
	PricePoint relationshipData `json:"inAppPurchasePricePoint"`
}
