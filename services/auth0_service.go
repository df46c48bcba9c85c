package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/otomono/jersey-orders-api/config"
)

// Auth0UserInfo is the subset of Auth0's /userinfo response the profile uses
type Auth0UserInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserInfoFetcher resolves the signed-in admin's identity
type UserInfoFetcher interface {
	GetUserInfo(ctx context.Context, accessToken string) (*Auth0UserInfo, error)
}

// Auth0Service calls the Auth0 authentication API on behalf of the signed-in admin
type Auth0Service struct {
	userInfoURL string
	httpClient  *http.Client
}

// NewAuth0Service creates a client for the configured tenant
func NewAuth0Service(cfg *config.Config) *Auth0Service {
	return NewAuth0ServiceWithClient(cfg.Auth0Domain, &http.Client{Timeout: 10 * time.Second})
}

// NewAuth0ServiceWithClient creates a client for domain using httpClient
func NewAuth0ServiceWithClient(domain string, httpClient *http.Client) *Auth0Service {
	return &Auth0Service{
		userInfoURL: fmt.Sprintf("https://%s/userinfo", domain),
		httpClient:  httpClient,
	}
}

// GetUserInfo exchanges accessToken for the admin's Auth0 profile
func (s *Auth0Service) GetUserInfo(ctx context.Context, accessToken string) (*Auth0UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call userinfo endpoint: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("[auth0] failed to close userinfo response: %v", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("userinfo endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var info Auth0UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	return &info, nil
}
