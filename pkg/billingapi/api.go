package billingapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/gatekit/pkg/subscription"
	"github.com/dmitrymomot/gatekit/pkg/usage"
)

// FetchCurrentSubscription implements subscription.Provider.
func (c *Client) FetchCurrentSubscription(ctx context.Context) (*subscription.Snapshot, error) {
	body, err := c.do(ctx, request{
		op:     OpFetchSubscription,
		method: http.MethodGet,
		path:   "subscription/current",
	})
	if err != nil {
		return nil, err
	}

	snap, err := decodeSnapshot(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeResponse, err)
	}
	return snap, nil
}

// FetchResourceCount implements usage.Fetcher. Keys map to endpoints as
// "services" → /usage/services and "photos:<id>" → /usage/photos?service_id=<id>.
func (c *Client) FetchResourceCount(ctx context.Context, key string) (int64, error) {
	resource, scope := usage.SplitKey(key)
	if resource == "" {
		return 0, fmt.Errorf("%w: %q", ErrUnknownResource, key)
	}

	var query url.Values
	if resource == usage.ResourcePhotos {
		if scope == "" {
			return 0, fmt.Errorf("%w: %q needs a service id", ErrUnknownResource, key)
		}
		query = url.Values{"service_id": {scope}}
	}

	body, err := c.do(ctx, request{
		op:     OpFetchUsage,
		method: http.MethodGet,
		path:   "usage/" + url.PathEscape(resource),
		query:  query,
	})
	if err != nil {
		return 0, err
	}

	var resp struct {
		Count *int64 `json:"count"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDecodeResponse, err)
	}
	if resp.Count == nil {
		return 0, fmt.Errorf("%w: count is missing", ErrDecodeResponse)
	}
	return *resp.Count, nil
}

// ActivateSubscription implements activation.Activator. An empty sessionID is
// omitted from the request body.
func (c *Client) ActivateSubscription(ctx context.Context, sessionID string) error {
	type activateRequest struct {
		SessionID string `json:"session_id,omitempty"`
	}

	_, err := c.do(ctx, request{
		op:     OpActivate,
		method: http.MethodPost,
		path:   "subscription/activate",
		body:   activateRequest{SessionID: sessionID},
	})
	return err
}
