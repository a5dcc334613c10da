package helpers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims mirrors the token shape issued by the external identity
// provider. Only the subject (user id) matters to this service.
type CustomClaims struct {
	Role         string                 `json:"role"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// Claims is what the auth middleware stores on the request context.
type Claims struct {
	*CustomClaims
	UserID string `json:"id"`
}

func (c *Claims) IsOwner(userID string) bool {
	return c.UserID == userID
}

var (
	jwksOnce sync.Once
	jwks     *keyfunc.JWKS
	jwksErr  error
)

// ValidateToken verifies a bearer token against the identity provider's JWKS.
// The key set is fetched once and refreshed in the background by keyfunc.
func ValidateToken(jwksURL, tokenStr string) (*Claims, error) {
	jwksOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		jwks, jwksErr = keyfunc.Get(jwksURL, keyfunc.Options{
			Ctx:             ctx,
			RefreshInterval: time.Hour,
		})
	})
	if jwksErr != nil {
		return nil, fmt.Errorf("failed to load JWKS: %w", jwksErr)
	}

	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, jwks.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	return &Claims{CustomClaims: claims, UserID: claims.Subject}, nil
}
