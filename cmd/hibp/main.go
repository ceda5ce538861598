// Command hibp queries the Have I Been Pwned API from the command line.
//
// Usage:
//
//	hibp breaches test@example.com
//	hibp password --padded --strength hunter2 correcthorse
//	hibp --auto-rate-limit stealer domains test@example.com
//	hibp init-config ~/.config/hibp/config.yaml
//
// Configuration comes from --config, a .env file, HIBP_* environment
// variables and the global flags below, in increasing precedence.
// Results are printed to stdout as indented JSON; logs go to stderr.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

// CLI defines the command-line interface.
type CLI struct {
	Version      VersionCmd      `cmd:"" help:"Show version information."`
	Breaches     BreachesCmd     `cmd:"" help:"List breaches an account appears in."`
	AllBreaches  AllBreachesCmd  `cmd:"" name:"all-breaches" help:"List every breach in the system."`
	Breach       BreachCmd       `cmd:"" help:"Show a single breach by name."`
	Latest       LatestCmd       `cmd:"" help:"Show the most recently added breach."`
	Pastes       PastesCmd       `cmd:"" help:"List pastes an account appears in."`
	Password     PasswordCmd     `cmd:"" help:"Check passwords against Pwned Passwords (k-anonymity)."`
	Range        RangeCmd        `cmd:"" help:"Search Pwned Passwords by a 5 character SHA-1 prefix."`
	Subscription SubscriptionCmd `cmd:"" help:"Show the API key's subscription status."`
	Domains      DomainsCmd      `cmd:"" help:"List domains verified for domain search."`
	Stealer      StealerCmd      `cmd:"" help:"Query info-stealer log data."`
	InitConfig   InitConfigCmd   `cmd:"" name:"init-config" help:"Write an example configuration file."`

	Config            string `short:"c" help:"Path to config file." type:"path"`
	APIKey            string `name:"api-key" help:"HIBP API key (overrides config and HIBP_API_KEY)."`
	RPM               int    `name:"rpm" help:"Pace requests to this many per minute."`
	AutoRateLimit     bool   `name:"auto-rate-limit" help:"Pace requests to the subscription's quota."`
	RateLimitStrategy string `name:"rate-limit-strategy" help:"Pacing strategy (interval, token_bucket)."`
	Metrics           bool   `help:"Serve Prometheus metrics while the command runs."`
	LogLevel          string `name:"log-level" help:"Log level (debug, info, warn, error)."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "hibp: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run parses args and executes the selected command.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("hibp"),
		kong.Description("Have I Been Pwned API client"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	a := newApp(ctx, &cli, stdin, stdout)
	err = kctx.Run(a)
	if closeErr := a.Close(); err == nil {
		err = closeErr
	}
	return err
}
