package ports

import "github.com/abx15/JanSankalp-AI-sub002/internal/domain"

// TokenVerifier turns a bearer token into the caller it was issued to.
type TokenVerifier interface {
	Verify(raw string) (domain.Actor, error)
}
