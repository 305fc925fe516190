package slug

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const caseIDPrefix = "L"

// Ordinals drawn when the existing maximum cannot be parsed.
const (
	fallbackCaseMin = 900
	fallbackCaseMax = 9999
)

var ErrMalformedCaseID = errors.New("malformed case id")

// FormatCaseID renders a launch ordinal as L followed by at least three digits.
func FormatCaseID(n int) string {
	return fmt.Sprintf("%s%03d", caseIDPrefix, n)
}

func ParseCaseID(s string) (int, error) {
	digits, ok := strings.CutPrefix(s, caseIDPrefix)
	if !ok || digits == "" {
		return 0, fmt.Errorf("%w: %q", ErrMalformedCaseID, s)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrMalformedCaseID, s)
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrMalformedCaseID, s, err)
	}
	return n, nil
}

// NextCaseID returns the case ID following maxExisting, the highest case ID issued so
// far ("" when none). A malformed maximum yields a random ID in L900..L9999; the
// storage uniqueness constraint rejects the rare duplicate.
func NextCaseID(maxExisting string, rnd Intn) string {
	if maxExisting == "" {
		return FormatCaseID(1)
	}
	n, err := ParseCaseID(maxExisting)
	if err != nil {
		if rnd == nil {
			rnd = globalRand{}
		}
		return FormatCaseID(fallbackCaseMin + rnd.IntN(fallbackCaseMax-fallbackCaseMin+1))
	}
	return FormatCaseID(n + 1)
}
