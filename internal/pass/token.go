// Package pass issues and checks visitor pass codes and renders them as QR images.
//
// A pass code has the form VISITOR-<unix millis>-<16 hex chars>. The random
// suffix carries 64 bits from crypto/rand, so codes from distinct issuances
// collide with negligible probability even within the same millisecond.
package pass

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Prefix starts every visitor pass code.
const Prefix = "VISITOR-"

const suffixBytes = 8

// ErrMalformed reports text that is not a visitor pass code.
var ErrMalformed = errors.New("not a visitor code: must start with " + Prefix)

var codePattern = regexp.MustCompile(`^VISITOR-\d+-\w+$`)

// NewCode generates a fresh pass code stamped with now.
func NewCode(now time.Time) (string, error) {
	buf := make([]byte, suffixBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate visitor code: %w", err)
	}
	return Prefix + strconv.FormatInt(now.UnixMilli(), 10) + "-" + hex.EncodeToString(buf), nil
}

// Normalize trims whitespace a scanner or a paste may leave around the code.
func Normalize(text string) string {
	return strings.TrimSpace(text)
}

// CheckPrefix is the filter applied before any verification call.
func CheckPrefix(text string) error {
	if !strings.HasPrefix(Normalize(text), Prefix) {
		return ErrMalformed
	}
	return nil
}

// WellFormed reports whether text matches the full VISITOR-<digits>-<word> shape.
func WellFormed(text string) bool {
	return codePattern.MatchString(Normalize(text))
}
