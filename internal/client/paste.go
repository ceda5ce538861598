package client

import (
	"context"

	"hibp/internal/models"
)

// PastesForAccount returns the pastes an email address appears in. An
// account with no pastes yields an empty slice.
func (c *Client) PastesForAccount(ctx context.Context, account string) ([]models.Paste, error) {
	segment, err := pathSegment("account", account)
	if err != nil {
		return nil, err
	}
	return getList[models.Paste](ctx, c, "PastesForAccount", "/pasteaccount/"+segment, notFoundEmpty)
}
