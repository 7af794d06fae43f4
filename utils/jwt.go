package utils

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const (
	SessionTTL  = 24 * time.Hour
	RememberTTL = 8760 * time.Hour
)

// ErrTokenMalformed marks tokens that cannot even be parsed, as opposed to
// tokens that parse but fail verification.
var ErrTokenMalformed = errors.New("malformed token")

type JWTClaim struct {
	ID string `json:"id"`
	jwt.StandardClaims
}

func TokenTTL(remember bool) time.Duration {
	if remember {
		return RememberTTL
	}
	return SessionTTL
}

func GenerateToken(id string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &JWTClaim{
		ID: id,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken verifies signature and expiry. A token that is not a JWT at
// all yields an error wrapping ErrTokenMalformed.
func ValidateToken(signedToken string, secret []byte) (*JWTClaim, error) {
	token, err := jwt.ParseWithClaims(
		signedToken,
		&JWTClaim{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return secret, nil
		},
	)
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return nil, errors.Join(ErrTokenMalformed, err)
		}
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaim)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
