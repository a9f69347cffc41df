// Package auth issues and verifies the signed bearer credentials used by
// protected operations. Tokens are stateless: validity is determined
// solely by the HMAC signature and the embedded expiry.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/apetrovs/databoard/internal/common"
)

// Claims includes the registered claims plus the user id the token
// proves. The id is serialized under "id".
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"id"`
}

// GenerateToken signs a token for userID, valid for validityDuration
// from now. Issued-at and expiry are embedded in the payload.
func GenerateToken(userID int64, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken verifies tokenString against secretKey and returns
// the embedded user id. An empty token yields common.ErrTokenMissing;
// a bad signature, malformed token, or expired token yields
// common.ErrTokenInvalid.
func GetUserIDFromToken(tokenString string, secretKey []byte) (int64, error) {
	if tokenString == "" {
		return 0, common.ErrTokenMissing
	}

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return 0, common.ErrTokenInvalid
	}

	if !token.Valid {
		return 0, common.ErrTokenInvalid
	}

	return claims.UserID, nil
}
