package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"qr-admin-service/internal/logger"
	"qr-admin-service/internal/models"
)

// ProviderClient talks to the hosted identity provider's admin REST API on
// behalf of superadmins. The service itself never stores credentials.
type ProviderClient struct {
	BaseURL    string
	AdminToken string
	Client     *http.Client
	Logger     *logger.Logger
}

func NewProviderClient(baseURL, adminToken string, client *http.Client, log *logger.Logger) *ProviderClient {
	return &ProviderClient{
		BaseURL:    baseURL,
		AdminToken: adminToken,
		Client:     client,
		Logger:     log,
	}
}

func (p *ProviderClient) CreateUser(req models.CreateUserRequest) (*models.ProviderUser, error) {
	var user models.ProviderUser
	if err := p.do("POST", "/admin/users", req, &user); err != nil {
		return nil, err
	}
	p.Logger.Info("AUTH", fmt.Sprintf("Created provider user %s", user.ID))
	return &user, nil
}

func (p *ProviderClient) UpdateUser(userID string, req models.UpdateUserRequest) (*models.ProviderUser, error) {
	var user models.ProviderUser
	if err := p.do("PUT", "/admin/users/"+userID, req, &user); err != nil {
		return nil, err
	}
	p.Logger.Info("AUTH", fmt.Sprintf("Updated provider user %s", userID))
	return &user, nil
}

func (p *ProviderClient) DeleteUser(userID string) error {
	if err := p.do("DELETE", "/admin/users/"+userID, nil, nil); err != nil {
		return err
	}
	p.Logger.Info("AUTH", fmt.Sprintf("Deleted provider user %s", userID))
	return nil
}

func (p *ProviderClient) do(method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, p.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.AdminToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			p.Logger.Warn("AUTH", fmt.Sprintf("Error closing response body: %v", cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		p.Logger.Error("AUTH", fmt.Sprintf("Provider admin API %s %s returned %s: %s", method, path, resp.Status, string(bodyBytes)))
		return fmt.Errorf("identity provider returned status %s", resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode provider response: %w", err)
		}
	}
	return nil
}
