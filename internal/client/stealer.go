package client

import (
	"context"

	"hibp/internal/models"
)

// StealerLogEmailsForDomain returns the addresses on a verified domain that
// appear in info-stealer logs.
func (c *Client) StealerLogEmailsForDomain(ctx context.Context, domain string) ([]models.StealerLogEmail, error) {
	segment, err := pathSegment("domain", domain)
	if err != nil {
		return nil, err
	}
	return getList[models.StealerLogEmail](ctx, c, "StealerLogEmailsForDomain", "/stealerlog/domain/"+segment, notFoundEmpty)
}

// StealerLogAliasesForDomain returns the email aliases on a verified domain
// that appear in info-stealer logs.
func (c *Client) StealerLogAliasesForDomain(ctx context.Context, domain string) ([]models.StealerLogAlias, error) {
	segment, err := pathSegment("domain", domain)
	if err != nil {
		return nil, err
	}
	return getList[models.StealerLogAlias](ctx, c, "StealerLogAliasesForDomain", "/stealerlog/alias/"+segment, notFoundEmpty)
}

// StealerLogDomainsForEmail returns the website domains an address was
// captured against by info-stealer malware.
func (c *Client) StealerLogDomainsForEmail(ctx context.Context, email string) ([]models.StealerLogDomain, error) {
	segment, err := pathSegment("email", email)
	if err != nil {
		return nil, err
	}
	return getList[models.StealerLogDomain](ctx, c, "StealerLogDomainsForEmail", "/stealerlog/email/"+segment, notFoundEmpty)
}
