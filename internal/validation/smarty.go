package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// SmartyValidator implements Validator against the Smarty US Street
// Address API. It is the fallback provider: a single strict-match lookup
// requesting one candidate.
type SmartyValidator struct {
	authID    string
	authToken string
	baseURL   string
	client    *http.Client
	logger    *slog.Logger
}

// SmartyConfig contains configuration for the Smarty provider.
type SmartyConfig struct {
	AuthID     string
	AuthToken  string
	BaseURL    string       // e.g. https://us-street.api.smarty.com
	Logger     *slog.Logger // Optional: defaults to slog.Default()
	HTTPClient *http.Client // Optional: defaults to a 10s-timeout client
}

// NewSmartyValidator creates the secondary address validation provider.
// Missing credentials do not fail construction; they degrade Validate to
// an immediate failure so startup never blocks on fallback config.
func NewSmartyValidator(cfg SmartyConfig) *SmartyValidator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: providerTimeout}
	}

	return &SmartyValidator{
		authID:    cfg.AuthID,
		authToken: cfg.AuthToken,
		baseURL:   cfg.BaseURL,
		client:    client,
		logger:    logger,
	}
}

// Validate looks up the address and returns the first candidate. An
// empty candidate list on a successful call is a validation failure, not
// a transport failure; both drive failover identically upstream.
func (v *SmartyValidator) Validate(ctx context.Context, addr Address) Outcome {
	if v.authID == "" || v.authToken == "" {
		return Failed(ReasonMissingCredentials)
	}

	params := url.Values{}
	params.Set("auth-id", v.authID)
	params.Set("auth-token", v.authToken)
	params.Set("street", addr.StreetAddress)
	params.Set("city", addr.City)
	params.Set("state", addr.State)
	params.Set("zipcode", addr.ZIPCode)
	params.Set("candidates", "1")
	params.Set("match", "strict")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/street-address?"+params.Encode(), nil)
	if err != nil {
		return Failed(fmt.Sprintf("smarty: build request: %v", err))
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn("smarty lookup failed", "error", err)
		return Failed(fmt.Sprintf("smarty: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		v.logger.Warn("smarty lookup returned non-2xx", "status", resp.StatusCode)
		return Failed(fmt.Sprintf("smarty: unexpected status %d", resp.StatusCode))
	}

	var candidates []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return Failed(fmt.Sprintf("smarty: decode response: %v", err))
	}
	if len(candidates) == 0 {
		return Failed(ReasonNoMatch)
	}

	// Take the first candidate. No ranking or disambiguation is done
	// among multiple candidates; callers rely on this.
	v.logger.Debug("smarty validation succeeded", "street", addr.StreetAddress)
	return Validated(candidates[0])
}
