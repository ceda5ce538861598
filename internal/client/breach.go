package client

import (
	"context"
	"net/url"
	"strings"

	"hibp/internal/models"
)

// BreachesForAccount returns every breach the account appears in, with full
// breach records. An account with no breaches yields an empty slice.
func (c *Client) BreachesForAccount(ctx context.Context, account string) ([]models.Breach, error) {
	segment, err := pathSegment("account", account)
	if err != nil {
		return nil, err
	}
	return getList[models.Breach](ctx, c, "BreachesForAccount",
		"/breachedaccount/"+segment+"?truncateResponse=false", notFoundEmpty)
}

// AllBreaches returns the full breach catalogue.
func (c *Client) AllBreaches(ctx context.Context) ([]models.Breach, error) {
	return getList[models.Breach](ctx, c, "AllBreaches", "/breaches", notFoundError)
}

// BreachByName returns a single breach by its stable name. An unknown name
// is a NOT_FOUND error.
func (c *Client) BreachByName(ctx context.Context, name string) (*models.Breach, error) {
	segment, err := pathSegment("breach name", name)
	if err != nil {
		return nil, err
	}
	breach, _, err := getJSON[models.Breach](ctx, c, "BreachByName", "/breach/"+segment, notFoundMissing)
	if err != nil {
		return nil, err
	}
	return &breach, nil
}

// LatestBreach returns the most recently added breach.
func (c *Client) LatestBreach(ctx context.Context) (*models.Breach, error) {
	breach, _, err := getJSON[models.Breach](ctx, c, "LatestBreach", "/latestbreach", notFoundMissing)
	if err != nil {
		return nil, err
	}
	return &breach, nil
}

// pathSegment trims and escapes a caller-supplied path parameter.
func pathSegment(what, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", NewValidationError(what+" cannot be empty", nil)
	}
	return url.PathEscape(value), nil
}
