package services

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/url"
)

// linkTokenBytes gives 256 bits of entropy
const linkTokenBytes = 32

// GenerateLinkToken mints an unguessable, URL-safe customer portal token
func GenerateLinkToken() (string, error) {
	b := make([]byte, linkTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate link token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// BuildCustomerLink embeds the order id and token in the portal URL
func BuildCustomerLink(baseURL, orderID, token string) string {
	q := url.Values{}
	q.Set("orderId", orderID)
	q.Set("token", token)
	return fmt.Sprintf("%s/customer?%s", baseURL, q.Encode())
}

// TokensEqual compares tokens in constant time
func TokensEqual(stored, presented string) bool {
	if stored == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
