package client

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"hibp/internal/models"
	"hibp/internal/password"
)

// SearchPasswordRange returns every known hash suffix sharing the 5
// character SHA-1 prefix. The prefix length is checked before any request.
func (c *Client) SearchPasswordRange(ctx context.Context, prefix string) ([]models.PwnedPassword, error) {
	return c.searchRange(ctx, "SearchPasswordRange", prefix, false)
}

// SearchPasswordRangePadded is SearchPasswordRange with response padding
// requested. The result may contain decoy entries with a zero count.
func (c *Client) SearchPasswordRangePadded(ctx context.Context, prefix string) ([]models.PwnedPassword, error) {
	return c.searchRange(ctx, "SearchPasswordRangePadded", prefix, true)
}

// CheckPassword returns how many times the password appears in the Pwned
// Passwords corpus, 0 when it does not. Only the hash prefix is sent.
func (c *Client) CheckPassword(ctx context.Context, pw string) (uint64, error) {
	prefix, suffix := password.Hash(pw)
	entries, err := c.SearchPasswordRange(ctx, prefix)
	if err != nil {
		return 0, err
	}
	return password.Match(entries, suffix), nil
}

// CheckPasswordPadded is CheckPassword using a padded range query.
func (c *Client) CheckPasswordPadded(ctx context.Context, pw string) (uint64, error) {
	prefix, suffix := password.Hash(pw)
	entries, err := c.SearchPasswordRangePadded(ctx, prefix)
	if err != nil {
		return 0, err
	}
	return password.Match(entries, suffix), nil
}

func (c *Client) searchRange(ctx context.Context, endpoint, prefix string, padded bool) ([]models.PwnedPassword, error) {
	if err := password.ValidatePrefix(prefix); err != nil {
		return nil, NewValidationError("invalid hash prefix", err)
	}

	var header http.Header
	if padded {
		header = http.Header{}
		header.Set(headerAddPadding, "true")
	}

	resp, err := c.send(ctx, endpoint, c.rangeURL+"/"+url.PathEscape(prefix), header)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, NewStatusError(endpoint, resp.status)
	}

	malformed := 0
	entries, err := password.ParseRangeFunc(bytes.NewReader(resp.body), func(line string) {
		malformed++
	})
	if err != nil {
		return nil, NewParseError(endpoint+": failed to read range response", err)
	}
	if malformed > 0 {
		c.logger.DebugContext(ctx, "Range response contained malformed lines",
			"endpoint", endpoint,
			"prefix", prefix,
			"malformed", malformed)
	}
	if padded {
		decoys := 0
		for _, e := range entries {
			if e.IsPadding() {
				decoys++
			}
		}
		c.logger.DebugContext(ctx, "Padded range response received",
			"endpoint", endpoint,
			"prefix", prefix,
			"entries", len(entries),
			"padding", decoys)
	}

	return entries, nil
}
