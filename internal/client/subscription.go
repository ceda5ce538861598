package client

import (
	"context"

	"hibp/internal/models"
)

// SubscriptionStatus returns the API key's subscription details, including
// its requests-per-minute quota.
func (c *Client) SubscriptionStatus(ctx context.Context) (*models.SubscriptionStatus, error) {
	status, _, err := getJSON[models.SubscriptionStatus](ctx, c, "SubscriptionStatus", "/subscription/status", notFoundError)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// SubscribedDomains returns the domains verified for domain search.
func (c *Client) SubscribedDomains(ctx context.Context) ([]models.SubscribedDomain, error) {
	return getList[models.SubscribedDomain](ctx, c, "SubscribedDomains", "/subscribed", notFoundError)
}
