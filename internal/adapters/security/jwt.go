package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/golang-jwt/jwt/v5"
)

// HMACVerifier validates HS256 session tokens issued by the web front-end.
type HMACVerifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

func NewHMACVerifier(secret, issuer string) (*HMACVerifier, error) {
	if len(strings.TrimSpace(secret)) < 16 {
		return nil, errors.New("jwt secret must be at least 16 characters")
	}
	return &HMACVerifier{secret: []byte(secret), issuer: issuer, leeway: 30 * time.Second}, nil
}

type sessionClaims struct {
	Role       string  `json:"role"`
	StateID    *string `json:"stateId,omitempty"`
	DistrictID *string `json:"districtId,omitempty"`
	CityID     *string `json:"cityId,omitempty"`
	WardID     *string `json:"wardId,omitempty"`
	jwt.RegisteredClaims
}

func (v *HMACVerifier) Verify(raw string) (domain.Actor, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	parsed, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return domain.Actor{}, fmt.Errorf("%w: invalid token claims", domain.ErrUnauthorized)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return domain.Actor{}, fmt.Errorf("%w: token subject is required", domain.ErrUnauthorized)
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return domain.Actor{
		UserID: claims.Subject,
		Role:   role,
		Scope: domain.Scope{
			StateID:    claims.StateID,
			DistrictID: claims.DistrictID,
			CityID:     claims.CityID,
			WardID:     claims.WardID,
		},
	}, nil
}

// Sign issues a token for actor. The API never issues sessions itself; this
// serves local tooling and tests.
func (v *HMACVerifier) Sign(actor domain.Actor, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Role:       string(actor.Role),
		StateID:    actor.Scope.StateID,
		DistrictID: actor.Scope.DistrictID,
		CityID:     actor.Scope.CityID,
		WardID:     actor.Scope.WardID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(v.secret)
}

var _ ports.TokenVerifier = (*HMACVerifier)(nil)
