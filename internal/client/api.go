package client

import (
	"context"

	"hibp/internal/models"
)

// API is the set of HIBP operations. *Client implements it directly;
// decorators such as the instrumented client wrap another API.
type API interface {
	// Breaches
	BreachesForAccount(ctx context.Context, account string) ([]models.Breach, error)
	AllBreaches(ctx context.Context) ([]models.Breach, error)
	BreachByName(ctx context.Context, name string) (*models.Breach, error)
	LatestBreach(ctx context.Context) (*models.Breach, error)

	// Pastes
	PastesForAccount(ctx context.Context, account string) ([]models.Paste, error)

	// Subscription
	SubscriptionStatus(ctx context.Context) (*models.SubscriptionStatus, error)
	SubscribedDomains(ctx context.Context) ([]models.SubscribedDomain, error)

	// Stealer logs
	StealerLogEmailsForDomain(ctx context.Context, domain string) ([]models.StealerLogEmail, error)
	StealerLogAliasesForDomain(ctx context.Context, domain string) ([]models.StealerLogAlias, error)
	StealerLogDomainsForEmail(ctx context.Context, email string) ([]models.StealerLogDomain, error)

	// Pwned Passwords
	SearchPasswordRange(ctx context.Context, prefix string) ([]models.PwnedPassword, error)
	SearchPasswordRangePadded(ctx context.Context, prefix string) ([]models.PwnedPassword, error)
	CheckPassword(ctx context.Context, password string) (uint64, error)
	CheckPasswordPadded(ctx context.Context, password string) (uint64, error)
}

var _ API = (*Client)(nil)
