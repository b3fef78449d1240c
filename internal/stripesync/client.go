package stripesync

import (
	"context"
	"fmt"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
)

// Client talks to the Stripe-compatible payment API over form-encoded
// HTTP, the only encoding that API accepts for writes.
type Client struct {
	endpoint string
	apiKey   string
	currency string
}

func NewClient(endpoint, apiKey, currency string) *Client {
	if currency == "" {
		currency = "usd"
	}
	return &Client{endpoint: endpoint, apiKey: apiKey, currency: currency}
}

type productResponse struct {
	ID string `json:"id"`
}

type priceResponse struct {
	ID string `json:"id"`
}

// CreateProduct registers a catalog item and returns the provider's
// product id.
func (c *Client) CreateProduct(ctx context.Context, name, description string) (string, error) {
	var rsp productResponse
	var code int
	err := gout.POST(c.endpoint+"/v1/products").
		WithContext(ctx).
		SetHeader(gout.H{"Authorization": "Bearer " + c.apiKey}).
		SetWWWForm(gout.H{
			"name":        name,
			"description": description,
		}).
		Code(&code).
		BindJSON(&rsp).
		Do()
	if err != nil {
		return "", errors.Wrap(err, "stripe create product")
	}
	if code >= 300 {
		return "", errors.Errorf("stripe create product: status %d", code)
	}
	return rsp.ID, nil
}

// CreatePrice attaches a unit price to an existing provider product.
// amountCents is the price in the smallest currency unit.
func (c *Client) CreatePrice(ctx context.Context, productID string, amountCents int64) (string, error) {
	var rsp priceResponse
	var code int
	err := gout.POST(c.endpoint+"/v1/prices").
		WithContext(ctx).
		SetHeader(gout.H{"Authorization": "Bearer " + c.apiKey}).
		SetWWWForm(gout.H{
			"product":     productID,
			"unit_amount": fmt.Sprintf("%d", amountCents),
			"currency":    c.currency,
		}).
		Code(&code).
		BindJSON(&rsp).
		Do()
	if err != nil {
		return "", errors.Wrap(err, "stripe create price")
	}
	if code >= 300 {
		return "", errors.Errorf("stripe create price: status %d", code)
	}
	return rsp.ID, nil
}
