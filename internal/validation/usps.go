package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mbecker/postal/internal/telemetry"
)

// Each provider call is bounded by a fixed timeout, past which the call
// is treated as a transport failure.
const providerTimeout = 10 * time.Second

// USPSValidator implements Validator against the USPS Addresses API.
// Every validation fetches a fresh OAuth bearer token via the
// client-credentials grant; tokens are never cached or shared, trading
// latency for the absence of stale-token failure modes.
type USPSValidator struct {
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	client       *http.Client
	logger       *slog.Logger
	metrics      *telemetry.Metrics
}

// USPSConfig contains configuration for the USPS provider.
type USPSConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string             // address lookup base, e.g. https://apis.usps.com/addresses/v3
	TokenURL     string             // OAuth token endpoint
	Logger       *slog.Logger       // Optional: defaults to slog.Default()
	Metrics      *telemetry.Metrics // Optional
	HTTPClient   *http.Client       // Optional: defaults to a 10s-timeout client
}

// NewUSPSValidator creates the primary address validation provider.
func NewUSPSValidator(cfg USPSConfig) *USPSValidator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: providerTimeout}
	}

	return &USPSValidator{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		baseURL:      cfg.BaseURL,
		tokenURL:     cfg.TokenURL,
		client:       client,
		logger:       logger,
		metrics:      cfg.Metrics,
	}
}

// Validate standardizes an address through the USPS lookup endpoint.
// Required fields are checked before any network call; a token exchange
// failure or any transport/status fault becomes a failed Outcome so the
// caller can fail over.
func (v *USPSValidator) Validate(ctx context.Context, addr Address) Outcome {
	if !addr.Complete() {
		return Failed(ReasonInvalidInput)
	}

	token, err := v.fetchToken(ctx)
	if err != nil {
		v.logger.Warn("usps token exchange failed", "error", err)
		return Failed(err.Error())
	}

	// Only non-empty fields are sent; blank query parameters are omitted.
	params := url.Values{}
	params.Set("streetAddress", addr.StreetAddress)
	if addr.City != "" {
		params.Set("city", addr.City)
	}
	params.Set("state", addr.State)
	params.Set("ZIPCode", addr.ZIPCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/address?"+params.Encode(), nil)
	if err != nil {
		return Failed(fmt.Sprintf("usps: build request: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn("usps lookup failed", "error", err)
		return Failed(fmt.Sprintf("usps: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		v.logger.Warn("usps lookup returned non-2xx", "status", resp.StatusCode)
		return Failed(fmt.Sprintf("usps: unexpected status %d", resp.StatusCode))
	}

	// The raw body is the standardized address; its shape is not
	// interpreted beyond parsing as a JSON object.
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Failed(fmt.Sprintf("usps: decode response: %v", err))
	}

	v.logger.Debug("usps validation succeeded", "street", addr.StreetAddress)
	return Validated(payload)
}

// fetchToken performs a single client-credentials exchange. No retry and
// no caching: any failure is an immediate auth failure for this attempt.
func (v *USPSValidator) fetchToken(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"client_id":     v.clientID,
		"client_secret": v.clientSecret,
		"grant_type":    "client_credentials",
	})
	if err != nil {
		return "", fmt.Errorf("usps auth: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.tokenURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("usps auth: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		v.metrics.TokenFetch("error")
		return "", fmt.Errorf("usps auth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		v.metrics.TokenFetch("error")
		return "", fmt.Errorf("usps auth: unexpected status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		v.metrics.TokenFetch("error")
		return "", fmt.Errorf("usps auth: decode response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		v.metrics.TokenFetch("error")
		return "", fmt.Errorf("usps auth: response missing access token")
	}

	v.metrics.TokenFetch("ok")
	return tokenResp.AccessToken, nil
}
