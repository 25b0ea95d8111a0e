package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity claim set embedded in both access and refresh
// tokens. Whatever comes out of a verified token is trusted verbatim, so
// ordinary authorization never re-reads the user record.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs claims with HS256, setting iat to now and exp to now+ttl. Each
// token also gets a random jti, so two tokens minted for the same claims in
// the same second are still distinct strings.
func Issue(c Claims, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	c.ID = uuid.NewString()

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tkn.SignedString(secret)
}

// Parse verifies signature and expiry and returns the embedded claims.
// Tampering, a wrong secret or a lapsed expiry all yield ErrInvalidToken.
func Parse(tokenStr string, secret []byte) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
