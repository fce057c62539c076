package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned for tokens whose expiry cannot be read.
var ErrMalformedToken = errors.New("malformed token")

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// TokenExpiry reads the exp claim from the payload (second) segment of a
// three-segment bearer token. The signature is not checked; the server does that.
// A token without an exp claim is reported as malformed.
func TokenExpiry(token string) (time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: decode payload: %v", ErrMalformedToken, err)
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: parse payload: %v", ErrMalformedToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("%w: no exp claim", ErrMalformedToken)
	}
	return exp.Time, nil
}

// IsExpired reports whether token is expired at now. Tokens whose expiry
// cannot be read count as expired.
func IsExpired(token string, now time.Time) bool {
	exp, err := TokenExpiry(token)
	if err != nil {
		return true
	}
	return !now.Before(exp)
}
