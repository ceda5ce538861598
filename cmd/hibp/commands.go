package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"hibp/internal/config"
	"hibp/internal/password"
	"hibp/internal/version"
)

// errPwned is returned by the password command with --fail-on-pwned.
var errPwned = errors.New("one or more passwords were found in breaches")

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(a *app) error {
	return a.print(version.GetInfo())
}

// BreachesCmd lists breaches for an account.
type BreachesCmd struct {
	Account string `arg:"" help:"Email address or username."`
}

func (c *BreachesCmd) Run(a *app) error {
	api, err := a.client()
	if err != nil {
		return err
	}
	breaches, err := api.BreachesForAccount(a.ctx, c.Account)
	if err != nil {
		return err
	}
	return a.print(breaches)
}

// AllBreachesCmd lists every breach.
type AllBreachesCmd struct{}

func (c *AllBreachesCmd) Run(a *app) error {
	api, err := a.client()
	if err != nil {
		return err
	}
	breaches, err := api.AllBreaches(a.ctx)
	if err != nil {
		return err
	}
	return a.print(breaches)
}

// BreachCmd shows one breach.
type BreachCmd struct {
	Name string `arg:"" help:"Breach name, e.g. Adobe."`
}

func (c *BreachCmd) Run(a *app) error {
	api, err := a.client()
	if err != nil {
		return err
	}
	breach, err := api.BreachByName(a.ctx, c.Name)
	if err != nil {
		return err
	}
	return a.print(breach)
}

// LatestCmd shows the most recently added breach.
type LatestCmd struct{}

func (c *LatestCmd) Run(a *app) error {
	api, err := a.client()
	if err != nil {
		return err
	}
	breach, err := api.LatestBreach(a.ctx)
	if err != nil {
		return err
	}
	return a.print(breach)
}

// PastesCmd lists pastes for an account.
type PastesCmd struct {
	Account string `arg:"" help:"Email address."`
}

func (c *PastesCmd) Run(a *app) error {
	api, err := a.client()
	if err != nil {
		return err
	}
	pastes, err := api.PastesForAccount(a.ctx, c.Account)
	if err != nil {
		return err
	}
	return a.print(pastes)
}

// PasswordCmd checks passwords with the k-anonymity range API.
type PasswordCmd struct {
	Passwords   []string `arg:"" optional:"" help:"Passwords to check. Read one per line from stdin when omitted."`
	Padded      bool     `help:"Request padded range responses."`
	Strength    bool     `help:"Include a zxcvbn strength estimate."`
	Concurrency int      `default:"4" help:"Maximum concurrent range requests."`
	FailOnPwned bool     `name:"fail-on-pwned" help:"Exit non-zero if any password is found."`
}

// passwordResult identifies a password by its input position and hash
// prefix; the password itself is never printed.
type passwordResult struct {
	Index    int                `json:"index"`
	Prefix   string             `json:"hash_prefix"`
	Count    uint64             `json:"count"`
	Pwned    bool               `json:"pwned"`
	Strength *password.Strength `json:"strength,omitempty"`
}

func (c *PasswordCmd) Run(a *app) error {
	passwords := c.Passwords
	if len(passwords) == 0 {
		var err error
		if passwords, err = readLines(a); err != nil {
			return err
		}
	}
	if len(passwords) == 0 {
		return errors.New("no passwords given")
	}

	api, err := a.client()
	if err != nil {
		return err
	}

	// Requests share the client's limiter, so concurrency only overlaps
	// network time; pacing still holds.
	results := make([]passwordResult, len(passwords))
	g, ctx := errgroup.WithContext(a.ctx)
	g.SetLimit(max(c.Concurrency, 1))

	for i, pw := range passwords {
		g.Go(func() error {
			check := api.CheckPassword
			if c.Padded {
				check = api.CheckPasswordPadded
			}
			count, err := check(ctx, pw)
			if err != nil {
				return fmt.Errorf("password %d: %w", i+1, err)
			}

			prefix, _ := password.Hash(pw)
			results[i] = passwordResult{Index: i + 1, Prefix: prefix, Count: count, Pwned: count > 0}
			if c.Strength {
				s := password.EstimateStrength(pw)
				results[i].Strength = &s
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := a.print(results); err != nil {
		return err
	}

	if c.FailOnPwned {
		for _, r := range results {
			if r.Pwned {
				return errPwned
			}
		}
	}
	return nil
}

func readLines(a *app) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(a.stdin)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read passwords: %w", err)
	}
	return lines, nil
}

// RangeCmd searches a hash prefix.
type RangeCmd struct {
	Prefix string `arg:"" help:"First 5 hex characters of a SHA-1 hash."`
	Padded bool   `help:"Request a padded response."`
}

func (c *RangeCmd) Run(a *app) error {
	api, err := a.client()
	if err != nil {
		return err
	}
	search := api.SearchPasswordRange
	if c.Padded {
		search = api.SearchPasswordRangePadded
	}
	entries, err := search(a.ctx, c.Prefix)
	if err != nil {
		return err
	}
	return a.print(entries)
}

// SubscriptionCmd shows subscription status.
type SubscriptionCmd struct{}

func (c *SubscriptionCmd) Run(a *app) error {
	api, err := a.client()
	if err != nil {
		return err
	}
	status, err := api.SubscriptionStatus(a.ctx)
	if err != nil {
		return err
	}
	return a.print(status)
}

// DomainsCmd lists subscribed domains.
type DomainsCmd struct{}

func (c *DomainsCmd) Run(a *app) error {
	api, err := a.client()
	if err != nil {
		return err
	}
	domains, err := api.SubscribedDomains(a.ctx)
	if err != nil {
		return err
	}
	return a.print(domains)
}

// StealerCmd groups the stealer log lookups.
type StealerCmd struct {
	Emails  StealerEmailsCmd  `cmd:"" help:"List stealer log emails for a domain."`
	Aliases StealerAliasesCmd `cmd:"" help:"List stealer log aliases for a domain."`
	Domains StealerDomainsCmd `cmd:"" help:"List website domains captured for an email."`
}

type StealerEmailsCmd struct {
	Domain string `arg:"" help:"Verified email domain."`
}

func (c *StealerEmailsCmd) Run(a *app) error {
	api, err := a.client()
	if err != nil {
		return err
	}
	emails, err := api.StealerLogEmailsForDomain(a.ctx, c.Domain)
	if err != nil {
		return err
	}
	return a.print(emails)
}

type StealerAliasesCmd struct {
	Domain string `arg:"" help:"Verified email domain."`
}

func (c *StealerAliasesCmd) Run(a *app) error {
	api, err := a.client()
	if err != nil {
		return err
	}
	aliases, err := api.StealerLogAliasesForDomain(a.ctx, c.Domain)
	if err != nil {
		return err
	}
	return a.print(aliases)
}

type StealerDomainsCmd struct {
	Email string `arg:"" help:"Email address."`
}

func (c *StealerDomainsCmd) Run(a *app) error {
	api, err := a.client()
	if err != nil {
		return err
	}
	domains, err := api.StealerLogDomainsForEmail(a.ctx, c.Email)
	if err != nil {
		return err
	}
	return a.print(domains)
}

// InitConfigCmd writes an example configuration file.
type InitConfigCmd struct {
	Path string `arg:"" type:"path" help:"Destination file."`
}

func (c *InitConfigCmd) Run(a *app) error {
	if err := config.SaveExample(c.Path); err != nil {
		return err
	}
	_, err := fmt.Fprintf(a.stdout, "Wrote example configuration to %s\n", c.Path)
	return err
}
