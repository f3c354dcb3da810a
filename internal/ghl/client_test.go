package ghl_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qr-admin-service/internal/config"
	"qr-admin-service/internal/ghl"
	"qr-admin-service/internal/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *ghl.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logger.NewLogger()
	t.Cleanup(func() { log.Close() })

	return ghl.NewClient(config.GHLConfig{
		BaseURL:    server.URL,
		APIToken:   "test-token",
		LocationID: "loc-1",
		Timeout:    5 * time.Second,
	}, log)
}

func TestGetOrder(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/orders/order-1", r.URL.Path)
		assert.Equal(t, "loc-1", r.URL.Query().Get("altId"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "2021-07-28", r.Header.Get("Version"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"_id":           "order-1",
			"paymentStatus": "paid",
			"amount":        350.0,
			"currency":      "USD",
			"contactSnapshot": map[string]string{
				"id": "contact-1", "name": "Alice", "email": "alice@example.com",
			},
			"items": []map[string]interface{}{
				{
					"qty":     2,
					"price":   map[string]interface{}{"_id": "price-vip", "name": "VIP", "amount": 150.0},
					"product": map[string]interface{}{"_id": "prod-1", "name": "Summer Gala"},
				},
				{
					"qty":     1,
					"price":   map[string]interface{}{"_id": "price-gen", "name": "General", "amount": 50.0},
					"product": map[string]interface{}{"_id": "prod-1", "name": "Summer Gala"},
				},
			},
		})
	}))

	order, err := client.GetOrder(context.Background(), "order-1")
	require.NoError(t, err)

	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, "paid", order.PaymentStatus)
	assert.Equal(t, "contact-1", order.Contact.ID)

	quantities := order.TicketQuantities()
	assert.Equal(t, 2, quantities["VIP"])
	assert.Equal(t, 1, quantities["General"])
}

func TestGetOrderServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))

	_, err := client.GetOrder(context.Background(), "order-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestListPrices(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/prod-1/price", r.URL.Path)
		assert.Equal(t, "loc-1", r.URL.Query().Get("locationId"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"prices": []map[string]interface{}{
				{"_id": "price-vip", "name": "VIP", "amount": 150.0},
				{"_id": "price-gen", "name": "General", "amount": 50.0},
			},
		})
	}))

	prices, err := client.ListPrices(context.Background(), "prod-1")
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, "VIP", prices[0].Name)
	assert.Equal(t, 150.0, prices[0].Amount)
}

func TestUpdateContactCustomField(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/contacts/contact-1", r.URL.Path)

		var body struct {
			CustomFields []struct {
				ID    string `json:"id"`
				Value string `json:"value"`
			} `json:"customFields"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.CustomFields, 1)
		assert.Equal(t, "field-1", body.CustomFields[0].ID)
		assert.Equal(t, "encrypted-payload", body.CustomFields[0].Value)

		w.WriteHeader(http.StatusOK)
	}))

	err := client.UpdateContactCustomField(context.Background(), "contact-1", "field-1", "encrypted-payload")
	require.NoError(t, err)
}

func TestRequestHonorsContext(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetOrder(ctx, "order-1")
	require.Error(t, err)
}
