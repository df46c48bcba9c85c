package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Hints for relay responses that are not JSON
const (
	HintFileNotFound     = "file not found"
	HintServerError      = "server error"
	HintPHPSyntaxError   = "PHP syntax error"
	HintPHPNotExecuting  = "PHP not executing"
	HintUnexpectedFormat = "unexpected"
)

// RelayConfigError means the relay endpoint is misconfigured: it answered with
// something other than the JSON contract
type RelayConfigError struct {
	StatusCode int
	Hint       string
	Snippet    string
}

func (e *RelayConfigError) Error() string {
	return fmt.Sprintf("mail relay returned a non-JSON response (status %d, %s)", e.StatusCode, e.Hint)
}

// RelayFailure means the relay answered with the JSON contract but did not send
type RelayFailure struct {
	StatusCode int
	Message    string
}

func (e *RelayFailure) Error() string {
	return fmt.Sprintf("mail relay failed (status %d): %s", e.StatusCode, e.Message)
}

// RelayResponse is the relay's JSON contract
type RelayResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RelayClient forwards messages to a remote relay endpoint
type RelayClient struct {
	url        string
	httpClient *http.Client
}

// NewRelayClient creates a relay caller; a nil client gets a 30 second timeout
func NewRelayClient(endpoint string, httpClient *http.Client) *RelayClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &RelayClient{url: endpoint, httpClient: httpClient}
}

// Send implements Mailer over the relay
func (c *RelayClient) Send(ctx context.Context, msg MailMessage) error {
	_, err := c.Post(ctx, msg)
	return err
}

// Post submits the form and classifies the response
func (c *RelayClient) Post(ctx context.Context, msg MailMessage) (*RelayResponse, error) {
	form := url.Values{}
	form.Set("name", msg.SenderName)
	form.Set("email", msg.SenderEmail)
	form.Set("to", msg.To)
	form.Set("subject", msg.Subject)
	form.Set("message", msg.Body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call mail relay: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read relay response: %w", err)
	}

	var out RelayResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &RelayConfigError{
			StatusCode: resp.StatusCode,
			Hint:       ClassifyRelayBody(resp.StatusCode, string(body)),
			Snippet:    snippet(string(body), 200),
		}
	}

	if resp.StatusCode != http.StatusOK || !out.Success {
		message := out.Message
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return nil, &RelayFailure{StatusCode: resp.StatusCode, Message: message}
	}
	return &out, nil
}

// ClassifyRelayBody turns a non-JSON relay response into a human-readable hint
func ClassifyRelayBody(status int, body string) string {
	switch {
	case status == http.StatusNotFound || strings.Contains(body, "404"):
		return HintFileNotFound
	case status >= http.StatusInternalServerError || strings.Contains(body, "500"):
		return HintServerError
	case strings.Contains(body, "Fatal error") || strings.Contains(body, "Parse error"):
		return HintPHPSyntaxError
	case strings.Contains(body, "<?php") || strings.Contains(body, "<!DOCTYPE") || strings.Contains(body, "<html"):
		return HintPHPNotExecuting
	default:
		return HintUnexpectedFormat
	}
}

func snippet(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
