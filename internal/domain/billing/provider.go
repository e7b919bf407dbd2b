package billing

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

type CheckoutParams struct {
	PriceID           string
	ClientReferenceID string
	CustomerEmail     string
	SuccessURL        string
	CancelURL         string
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type ProviderSubscription struct {
	ID               string
	Status           string
	CurrentPeriodEnd time.Time
}

// Provider is the payment provider's API surface this service needs.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (CheckoutSession, error)
	RetrieveSubscription(ctx context.Context, subscriptionID string) (ProviderSubscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

// HTTPProvider talks to the provider's form-encoded REST API.
type HTTPProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewHTTPProvider(baseURL, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *HTTPProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("client_reference_id", params.ClientReferenceID)
	form.Set("customer_email", params.CustomerEmail)
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)

	var session CheckoutSession
	if err := p.do(ctx, http.MethodPost, "/checkout/sessions", form, &session); err != nil {
		return CheckoutSession{}, err
	}
	return session, nil
}

func (p *HTTPProvider) RetrieveSubscription(ctx context.Context, subscriptionID string) (ProviderSubscription, error) {
	var payload struct {
		ID               string `json:"id"`
		Status           string `json:"status"`
		CurrentPeriodEnd int64  `json:"current_period_end"`
	}
	if err := p.do(ctx, http.MethodGet, "/subscriptions/"+subscriptionID, nil, &payload); err != nil {
		return ProviderSubscription{}, err
	}
	return ProviderSubscription{
		ID:               payload.ID,
		Status:           payload.Status,
		CurrentPeriodEnd: time.Unix(payload.CurrentPeriodEnd, 0).UTC(),
	}, nil
}

func (p *HTTPProvider) CancelSubscription(ctx context.Context, subscriptionID string) error {
	return p.do(ctx, http.MethodDelete, "/subscriptions/"+subscriptionID, nil, nil)
}

func (p *HTTPProvider) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("provider %s %s failed: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
