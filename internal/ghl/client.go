package ghl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"qr-admin-service/internal/config"
	"qr-admin-service/internal/logger"
	"qr-admin-service/internal/models"
)

// Client wraps the GHL commerce REST API with bearer-token auth. Every call
// takes a context so the sync job can bound and cancel requests.
type Client struct {
	BaseURL    string
	APIToken   string
	LocationID string
	HTTPClient *http.Client
	Logger     *logger.Logger
}

func NewClient(cfg config.GHLConfig, log *logger.Logger) *Client {
	return &Client{
		BaseURL:    cfg.BaseURL,
		APIToken:   cfg.APIToken,
		LocationID: cfg.LocationID,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Logger:     log,
	}
}

// ListOrders fetches one page of orders for the configured location.
func (c *Client) ListOrders(ctx context.Context, limit, offset int) ([]models.GHLOrder, error) {
	query := url.Values{}
	query.Set("altId", c.LocationID)
	query.Set("altType", "location")
	query.Set("limit", fmt.Sprintf("%d", limit))
	query.Set("offset", fmt.Sprintf("%d", offset))

	var out struct {
		Data []models.GHLOrder `json:"data"`
	}
	if err := c.get(ctx, "/payments/orders?"+query.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetOrder fetches one order's detail, line items included.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*models.GHLOrder, error) {
	var order models.GHLOrder
	path := fmt.Sprintf("/payments/orders/%s?altId=%s&altType=location", orderID, c.LocationID)
	if err := c.get(ctx, path, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetPrice fetches one price tier of a product.
func (c *Client) GetPrice(ctx context.Context, productID, priceID string) (*models.GHLPrice, error) {
	var price models.GHLPrice
	path := fmt.Sprintf("/products/%s/price/%s?locationId=%s", productID, priceID, c.LocationID)
	if err := c.get(ctx, path, &price); err != nil {
		return nil, err
	}
	return &price, nil
}

// ListPrices fetches all price tiers of a product.
func (c *Client) ListPrices(ctx context.Context, productID string) ([]models.GHLPrice, error) {
	var out struct {
		Prices []models.GHLPrice `json:"prices"`
	}
	path := fmt.Sprintf("/products/%s/price?locationId=%s", productID, c.LocationID)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Prices, nil
}

// UpdateContactCustomField writes one custom field value on a CRM contact.
// The sync flow uses it to store the generated QR payload.
func (c *Client) UpdateContactCustomField(ctx context.Context, contactID, fieldID, value string) error {
	body := map[string]interface{}{
		"customFields": []map[string]string{
			{"id": fieldID, "value": value},
		},
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode contact update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "PUT", c.BaseURL+"/contacts/"+contactID, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("contact update failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.Logger.Error("GHL", fmt.Sprintf("Contact update for %s returned %s: %s", contactID, resp.Status, string(bodyBytes)))
		return fmt.Errorf("contact update returned status %s", resp.Status)
	}

	c.Logger.LogGHL("PUT", "/contacts/"+contactID, "custom field updated")
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GHL request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.Logger.Error("GHL", fmt.Sprintf("GET %s returned %s: %s", path, resp.Status, string(bodyBytes)))
		return fmt.Errorf("GHL returned status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode GHL response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.APIToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Version", "2021-07-28")
}
