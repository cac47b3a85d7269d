// Package session encodes the stored "current user" marker.
//
// PlainCodec stores the bare username, which is what a single-user local
// database needs. JWTCodec signs the username with HS256 so a marker kept
// in a shared backend cannot be forged or replayed past its TTL.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/soraprompter/internal/clock"
	"github.com/dmitrijs2005/soraprompter/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Codec turns a username into a storable marker and back.
type Codec interface {
	Encode(username string) (string, error)
	// Decode returns common.ErrInvalidToken or common.ErrTokenExpired for
	// markers that must not resolve to a user.
	Decode(marker string) (string, error)
}

// PlainCodec stores the username verbatim.
type PlainCodec struct{}

func (PlainCodec) Encode(username string) (string, error) { return username, nil }

func (PlainCodec) Decode(marker string) (string, error) { return marker, nil }

// Claims identifies the session owner in the token subject.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTCodec issues HS256 tokens. A zero TTL issues tokens without expiry.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewJWTCodec(secret []byte, ttl time.Duration, c clock.Clock) (*JWTCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret is empty")
	}
	if c == nil {
		c = clock.Real{}
	}
	return &JWTCodec{secret: secret, ttl: ttl, clock: c}, nil
}

func (j *JWTCodec) Encode(username string) (string, error) {
	now := j.clock.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  username,
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if j.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(j.ttl))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (j *JWTCodec) Decode(marker string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(marker, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.clock.Now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return "", common.ErrTokenExpired
	}
	if err != nil || !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
