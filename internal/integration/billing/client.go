// Package billing talks to the subscription billing provider's REST API.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

// DefaultBaseURL is the provider's production API root.
const DefaultBaseURL = "https://api.revenuecat.com/v1"

const retryDelay = 300 * time.Millisecond

// Client reads subscriber state from the billing provider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a billing client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

var _ adapter.BillingService = (*Client)(nil)

type subscriberResponse struct {
	Subscriber struct {
		OriginalAppUserID string                         `json:"original_app_user_id"`
		Entitlements      map[string]entitlementPayload  `json:"entitlements"`
		Subscriptions     map[string]subscriptionPayload `json:"subscriptions"`
	} `json:"subscriber"`
}

type entitlementPayload struct {
	ExpiresDate       *time.Time `json:"expires_date"`
	ProductIdentifier string     `json:"product_identifier"`
	PurchaseDate      *time.Time `json:"purchase_date"`
}

type subscriptionPayload struct {
	ExpiresDate             *time.Time `json:"expires_date"`
	UnsubscribeDetectedAt   *time.Time `json:"unsubscribe_detected_at"`
	BillingIssuesDetectedAt *time.Time `json:"billing_issues_detected_at"`
}

// GetCustomerInfo fetches the subscriber and splits its entitlements into
// the active set and the all-time set.
func (c *Client) GetCustomerInfo(ctx context.Context, appUserID string) (*entity.CustomerInfo, error) {
	reqURL := c.baseURL + "/subscribers/" + url.PathEscape(appUserID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("billing: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, domainerror.NewSubscriptionError(
			domainerror.ErrCodeBillingUnavailable,
			"billing provider unreachable",
			fmt.Errorf("%w: %v", domainerror.ErrBillingUnavailable, err),
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domainerror.ErrBillingCustomerNotFound
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, domainerror.NewSubscriptionError(
			domainerror.ErrCodeBillingUnavailable,
			fmt.Sprintf("billing provider returned status %d", resp.StatusCode),
			domainerror.ErrBillingUnavailable,
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("billing: read body: %w", err)
	}

	var payload subscriberResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("billing: decode json: %w", err)
	}

	return c.toCustomerInfo(appUserID, &payload), nil
}

func (c *Client) toCustomerInfo(appUserID string, payload *subscriberResponse) *entity.CustomerInfo {
	now := c.now()
	info := &entity.CustomerInfo{
		CustomerID: payload.Subscriber.OriginalAppUserID,
		Active:     make(map[string]entity.EntitlementInfo),
		All:        make(map[string]entity.EntitlementInfo),
	}
	if info.CustomerID == "" {
		info.CustomerID = appUserID
	}

	for id, e := range payload.Subscriber.Entitlements {
		ent := entity.EntitlementInfo{
			Identifier:        id,
			ProductIdentifier: e.ProductIdentifier,
			ExpiresAt:         e.ExpiresDate,
			WillRenew:         true,
		}
		if sub, ok := payload.Subscriber.Subscriptions[e.ProductIdentifier]; ok {
			ent.WillRenew = sub.UnsubscribeDetectedAt == nil && sub.BillingIssuesDetectedAt == nil
		}
		// lifetime purchases have no expiry and never renew
		if e.ExpiresDate == nil {
			ent.WillRenew = false
		}

		info.All[id] = ent
		if e.ExpiresDate == nil || e.ExpiresDate.After(now) {
			info.Active[id] = ent
		}
	}

	return info
}

// doWithRetry retries once on 5xx or network errors.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err == nil && resp.StatusCode < 500 {
		return resp, nil
	}
	if ctx.Err() != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, ctx.Err()
	}

	reason := "network error"
	if err == nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
		resp.Body.Close()
	}
	slog.WarnContext(ctx, "Billing request failed, retrying", "reason", reason)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(retryDelay):
	}

	retry, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), nil)
	if err != nil {
		return nil, err
	}
	retry.Header = req.Header.Clone()
	return c.httpClient.Do(retry)
}
