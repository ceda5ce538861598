// Package models - HIBP API response records and error codes.
// This file defines the typed structures the client decodes service responses into.
//
// Record Design Principles:
// - Field names follow Go conventions, JSON tags follow the service's documented names
// - Optional service fields are pointers so "absent" and "empty" stay distinguishable
// - Records are plain data: no behavior beyond small read-only helpers
// - Dates are kept as the service's strings; callers parse what they need
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Breach describes a single breach in the HIBP catalogue.
//
// The JSON tags match the PascalCase field names of the v3 API. The list
// endpoints return arrays of these; the named-breach and latest-breach
// endpoints return a single object.
type Breach struct {
	Name               string   `json:"Name"`               // Stable identifier, used in /breach/{name}
	Title              string   `json:"Title"`              // Human-readable title
	Domain             string   `json:"Domain"`             // Primary domain of the breached service
	BreachDate         string   `json:"BreachDate"`         // Date the breach occurred (YYYY-MM-DD)
	AddedDate          string   `json:"AddedDate"`          // When HIBP loaded the breach
	ModifiedDate       string   `json:"ModifiedDate"`       // Last modification of the record
	PwnCount           uint64   `json:"PwnCount"`           // Number of accounts loaded
	Description        string   `json:"Description"`        // HTML overview of the incident
	LogoPath           string   `json:"LogoPath"`           // URI of the service logo
	DataClasses        []string `json:"DataClasses"`        // Kinds of data exposed
	IsVerified         bool     `json:"IsVerified"`         // Breach considered legitimate
	IsFabricated       bool     `json:"IsFabricated"`       // Breach likely fabricated
	IsSensitive        bool     `json:"IsSensitive"`        // Not returned for public account searches
	IsRetired          bool     `json:"IsRetired"`          // Permanently removed
	IsSpamList         bool     `json:"IsSpamList"`         // Spam list rather than a compromise
	IsMalware          bool     `json:"IsMalware"`          // Sourced from malware
	IsStealerLog       bool     `json:"IsStealerLog"`       // Sourced from info-stealer logs
	IsSubscriptionFree bool     `json:"IsSubscriptionFree"` // Searchable without a subscription
}

// Paste is an appearance of an account in a public paste.
type Paste struct {
	Source     string  `json:"Source"`
	ID         string  `json:"Id"`
	Title      *string `json:"Title"`
	Date       *string `json:"Date"`
	EmailCount uint64  `json:"EmailCount"`
}

// SubscriptionStatus describes the API key's subscription, including the
// requests-per-minute quota used to auto-configure the rate limiter.
type SubscriptionStatus struct {
	SubscriptionName                string `json:"SubscriptionName"`
	Description                     string `json:"Description"`
	SubscribedUntil                 string `json:"SubscribedUntil"`
	Rpm                             int    `json:"Rpm"`
	DomainSearchMaxBreachedAccounts int    `json:"DomainSearchMaxBreachedAccounts"`
	IncludesStealerLogs             bool   `json:"IncludesStealerLogs"`
}

// SubscribedDomain is a domain verified for domain search under the key.
type SubscribedDomain struct {
	DomainName  string `json:"domainName"`
	DateAdded   string `json:"dateAdded"`
	DateExpires string `json:"dateExpires"`
}

// StealerLogEmail is an address on a domain seen in info-stealer logs.
type StealerLogEmail struct {
	Email string `json:"email"`
}

// StealerLogAlias is an email alias on a domain seen in info-stealer logs.
type StealerLogAlias struct {
	Alias string `json:"alias"`
}

// StealerLogDomain is a website domain an email was captured against.
type StealerLogDomain struct {
	Domain string `json:"domain"`
}

// The stealer log endpoints answer with bare JSON strings; the object form
// is accepted as well.

func (e *StealerLogEmail) UnmarshalJSON(data []byte) error {
	return unmarshalStringOrField(data, "email", &e.Email)
}

func (a *StealerLogAlias) UnmarshalJSON(data []byte) error {
	return unmarshalStringOrField(data, "alias", &a.Alias)
}

func (d *StealerLogDomain) UnmarshalJSON(data []byte) error {
	return unmarshalStringOrField(data, "domain", &d.Domain)
}

func unmarshalStringOrField(data []byte, field string, dst *string) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, dst)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return err
	}
	raw, ok := obj[field]
	if !ok {
		return fmt.Errorf("missing %q field", field)
	}
	return json.Unmarshal(raw, dst)
}

// PwnedPassword is one SUFFIX:COUNT line of a password range response.
// A zero Count is a padding decoy when padding was requested.
type PwnedPassword struct {
	HashSuffix string `json:"hash_suffix"`
	Count      uint64 `json:"count"`
}

// IsPadding reports whether the entry carries no occurrences, which is how
// the service marks the decoys it injects into padded responses.
func (p PwnedPassword) IsPadding() bool {
	return p.Count == 0
}

// Client Error Codes
//
// Error Code Strategy:
// - Upper-case with underscores for consistency
// - One code per failure class the caller can act on
// - Machine-readable for client error handling
const (
	ErrorCodeValidation = "VALIDATION_ERROR" // Malformed input, detected before any I/O
	ErrorCodeNotFound   = "NOT_FOUND"        // Service reported no such named resource
	ErrorCodeTransport  = "TRANSPORT_ERROR"  // Non-2xx status or HTTP/TLS failure
	ErrorCodeParse      = "PARSE_ERROR"      // Body did not match the expected shape
)
