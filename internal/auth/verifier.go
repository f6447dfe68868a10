package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors for credential verification
var (
	ErrNoCredential      = errors.New("no bearer credential")
	ErrInvalidCredential = errors.New("invalid credential")
)

// Identity is the verified content of a bearer credential. The fields are
// only populated after the signature, issuer and audience have been checked;
// no claim is ever read from an unverified token.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Verifier verifies bearer JWTs against the identity provider's published
// key set.
type Verifier struct {
	issuer   string
	audience string
	keys     *KeySet
}

// NewVerifier creates a verifier for tokens issued by issuer for audience,
// using keys to resolve signing keys by kid.
func NewVerifier(issuer, audience string, keys *KeySet) *Verifier {
	return &Verifier{
		issuer:   issuer,
		audience: audience,
		keys:     keys,
	}
}

// Verify checks the token's signature, issuer, audience and expiry, and
// returns the identity carried in its claims.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.Parse(tokenString, func(t *jwt.Token) (any, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, fmt.Errorf("missing kid header")
		}
		return v.keys.Key(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}
	if !token.Valid {
		return nil, ErrInvalidCredential
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrInvalidCredential)
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidCredential)
	}

	identity := &Identity{Subject: subject}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		identity.Name = name
	}
	return identity, nil
}
