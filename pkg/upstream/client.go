package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"affiliate-addon/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("upstream", fx.Provide(NewClient))

// Client talks to the hosted commerce platform API. Every request is
// tenant-scoped through the "tenant" header and authenticated with the
// add-on's API key. Calls are single-attempt; the transport timeout bounds
// how long a sync step can block a handler.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Params struct {
	fx.In
	Config *config.Config
}

func NewClient(p Params) *Client {
	return &Client{
		baseURL: p.Config.Upstream.BaseURL,
		apiKey:  p.Config.Upstream.APIKey,
		httpClient: &http.Client{
			Timeout: p.Config.Upstream.Timeout,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 20 * time.Second,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
			},
		},
	}
}

type customerAppData struct {
	AffiliateID     string `json:"affiliateId"`
	AffiliateStatus string `json:"affiliateStatus"`
}

// PutCustomerAffiliateData stamps the upstream customer record with the
// affiliate id and status under the add-on's appData namespace.
func (c *Client) PutCustomerAffiliateData(ctx context.Context, tenantID, customerID, affiliateID, status string) error {
	body := map[string]any{
		"appData": customerAppData{
			AffiliateID:     affiliateID,
			AffiliateStatus: status,
		},
	}

	endpoint := fmt.Sprintf("%s/customer/%s", c.baseURL, url.PathEscape(customerID))
	return c.put(ctx, tenantID, endpoint, body)
}

// PutProductCommission writes a product's commission settings to the
// upstream custom fields.
func (c *Client) PutProductCommission(ctx context.Context, tenantID, productID, commissionType, commissionValue string) error {
	body := map[string]any{
		"customFields": map[string]string{
			"commissionType":  commissionType,
			"commissionValue": commissionValue,
		},
	}

	endpoint := fmt.Sprintf("%s/product/%s", c.baseURL, url.PathEscape(productID))
	return c.put(ctx, tenantID, endpoint, body)
}

func (c *Client) put(ctx context.Context, tenantID, endpoint string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("upstream: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("upstream: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("tenant", tenantID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// a transport timeout is the same failure as an error response
		return fmt.Errorf("upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		zap.L().Warn("upstream request rejected",
			zap.String("endpoint", endpoint),
			zap.String("tenant_id", tenantID),
			zap.Int("status_code", resp.StatusCode),
		)
		return fmt.Errorf("upstream: status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	return nil
}
