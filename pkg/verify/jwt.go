package verify

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaim asserts a claim of the given token strictly equals want. The token
// is parsed without signature verification: this checks token shape and
// payload content, not trust.
func JWTClaim(token, claim string, want any) error {
	raw := strings.TrimPrefix(strings.TrimSpace(token), "Bearer ")
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return fmt.Errorf("jwt parse failed: %w", err)
	}
	got, ok := claims[claim]
	if !ok {
		return fmt.Errorf("expected claim %q, not found", claim)
	}
	if !strictEqual(got, want) {
		return fmt.Errorf("claim %q: expected %s, got %s", claim, formatValue(want), formatValue(got))
	}
	return nil
}
