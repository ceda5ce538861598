// Package password implements the k-anonymity side of the Pwned Passwords
// range protocol: hashing a candidate password, validating a hash prefix,
// parsing a range response and matching a suffix against it. Only the
// five-character prefix of the SHA-1 hash ever leaves the process.
package password

import (
	"bufio"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	zxcvbn "github.com/nbutton23/zxcvbn-go"

	"hibp/internal/models"
)

const (
	// PrefixLength is the number of hash characters sent to the range endpoint.
	PrefixLength = 5
	// SuffixLength is the number of hash characters kept locally.
	SuffixLength = 35
)

// ErrInvalidPrefix is returned when a hash prefix is not exactly
// PrefixLength bytes long.
var ErrInvalidPrefix = errors.New("hash prefix must be exactly 5 characters")

// Hash returns the upper-case hex SHA-1 of the password's raw bytes, split
// into the prefix sent to the service and the suffix matched locally. The
// password is not trimmed or normalized.
func Hash(password string) (prefix, suffix string) {
	sum := sha1.Sum([]byte(password))
	full := strings.ToUpper(hex.EncodeToString(sum[:]))
	return full[:PrefixLength], full[PrefixLength:]
}

// ValidatePrefix checks the prefix length. Characters are not checked; the
// service answers whatever it answers for non-hex input.
func ValidatePrefix(prefix string) error {
	if len(prefix) != PrefixLength {
		return fmt.Errorf("%w: got %d", ErrInvalidPrefix, len(prefix))
	}
	return nil
}

// ParseRange reads a range response body of SUFFIX:COUNT lines.
func ParseRange(r io.Reader) ([]models.PwnedPassword, error) {
	return ParseRangeFunc(r, nil)
}

// ParseRangeFunc is ParseRange with a callback invoked for every line whose
// count could not be read. Such lines are still returned with a zero count.
//
// Parsing is lenient: the suffix is the text before the first colon (the
// whole line when there is none), a count that is not a non-negative integer
// becomes 0, trailing carriage returns are dropped and blank lines skipped.
// Lines have no length limit. Only a read error fails the parse.
func ParseRangeFunc(r io.Reader, malformed func(line string)) ([]models.PwnedPassword, error) {
	entries := make([]models.PwnedPassword, 0)

	br := bufio.NewReader(r)
	for {
		raw, readErr := br.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, fmt.Errorf("failed to read range response: %w", readErr)
		}

		line := strings.TrimRight(raw, "\r\n")
		if strings.TrimSpace(line) != "" {
			suffix, rawCount, found := strings.Cut(line, ":")
			count, err := strconv.ParseUint(strings.TrimSpace(rawCount), 10, 64)
			if err != nil || !found {
				count = 0
				if malformed != nil {
					malformed(line)
				}
			}

			entries = append(entries, models.PwnedPassword{
				HashSuffix: suffix,
				Count:      count,
			})
		}

		if readErr == io.EOF {
			break
		}
	}

	return entries, nil
}

// Match returns the count of the first entry whose suffix equals suffix,
// ignoring case, or 0 when there is none. Padding entries carry a zero
// count, so matching one also yields 0.
func Match(entries []models.PwnedPassword, suffix string) uint64 {
	want := strings.ToUpper(suffix)
	for _, e := range entries {
		if strings.ToUpper(e.HashSuffix) == want {
			return e.Count
		}
	}
	return 0
}

// Strength summarizes a zxcvbn estimate.
type Strength struct {
	Score            int     `json:"score"`
	Entropy          float64 `json:"entropy"`
	CrackTimeSeconds float64 `json:"crack_time_seconds"`
	CrackTimeDisplay string  `json:"crack_time_display"`
}

// EstimateStrength runs zxcvbn against the password. userInputs are
// penalized when they appear in it, typically the account name.
func EstimateStrength(password string, userInputs ...string) Strength {
	result := zxcvbn.PasswordStrength(password, userInputs)
	return Strength{
		Score:            result.Score,
		Entropy:          result.Entropy,
		CrackTimeSeconds: result.CrackTime,
		CrackTimeDisplay: result.CrackTimeDisplay,
	}
}
