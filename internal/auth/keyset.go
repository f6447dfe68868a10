package auth

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog/log"
)

// KeySet fetches and caches the identity provider's published signing keys
// (JWKS). Keys are cached per endpoint for an hour on top of whatever
// HTTP-level caching the transport provides.
type KeySet struct {
	jwksURL    string
	httpClient *http.Client

	mu        sync.RWMutex
	keys      map[string]crypto.PublicKey // kid → public key
	expiresAt time.Time
}

// NewKeySet creates a key set backed by the given JWKS endpoint. If
// httpClient is nil a caching client is used so provider Cache-Control
// headers are honored.
func NewKeySet(jwksURL string, httpClient *http.Client) *KeySet {
	if httpClient == nil {
		httpClient = NewCachingHTTPClient()
	}
	return &KeySet{
		jwksURL:    jwksURL,
		httpClient: httpClient,
		keys:       make(map[string]crypto.PublicKey),
	}
}

// NewCachingHTTPClient creates an HTTP client with in-memory response
// caching, suitable for JWKS endpoints that serve Cache-Control headers.
func NewCachingHTTPClient() *http.Client {
	return &http.Client{
		Transport: httpcache.NewTransport(httpcache.NewMemoryCache()),
		Timeout:   10 * time.Second,
	}
}

// Key returns the public key for kid, fetching the JWKS if the cache is
// cold, expired, or missing the kid (key rotation).
func (ks *KeySet) Key(ctx context.Context, kid string) (crypto.PublicKey, error) {
	ks.mu.RLock()
	key, ok := ks.keys[kid]
	fresh := time.Now().Before(ks.expiresAt)
	ks.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}

	keys, err := ks.fetch(ctx)
	if err != nil {
		return nil, err
	}

	ks.mu.Lock()
	ks.keys = keys
	ks.expiresAt = time.Now().Add(1 * time.Hour)
	ks.mu.Unlock()

	key, ok = keys[kid]
	if !ok {
		return nil, fmt.Errorf("kid not found in JWKS: %s", kid)
	}
	return key, nil
}

// fetch retrieves and parses the JWKS document, retrying transient failures
// with exponential backoff.
func (ks *KeySet) fetch(ctx context.Context) (map[string]crypto.PublicKey, error) {
	operation := func() (map[string]crypto.PublicKey, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ks.jwksURL, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to create JWKS request: %w", err))
		}

		resp, err := ks.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("JWKS request failed: %s", resp.Status)
		}

		var doc struct {
			Keys []map[string]any `json:"keys"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode JWKS: %w", err)
		}

		keys := make(map[string]crypto.PublicKey)
		for _, jwk := range doc.Keys {
			kid, ok := jwk["kid"].(string)
			if !ok || kid == "" {
				log.Warn().Msg("JWK missing kid")
				continue
			}

			key, err := parseJWK(jwk)
			if err != nil {
				log.Warn().Err(err).Str("kid", kid).Msg("Failed to parse JWK")
				continue
			}
			keys[kid] = key
		}

		if len(keys) == 0 {
			return nil, fmt.Errorf("no usable keys in JWKS document")
		}
		return keys, nil
	}

	keys, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3),
	)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("jwks_url", ks.jwksURL).Int("keys", len(keys)).Msg("Cached JWKS")
	return keys, nil
}

// parseJWK parses a JWK into an RSA or ECDSA public key.
func parseJWK(jwk map[string]any) (crypto.PublicKey, error) {
	kty, _ := jwk["kty"].(string)
	switch kty {
	case "RSA":
		return parseRSAJWK(jwk)
	case "EC":
		return parseECJWK(jwk)
	default:
		return nil, fmt.Errorf("unsupported key type: %q", kty)
	}
}

func parseRSAJWK(jwk map[string]any) (*rsa.PublicKey, error) {
	nStr, ok := jwk["n"].(string)
	if !ok {
		return nil, fmt.Errorf("missing modulus")
	}
	eStr, ok := jwk["e"].(string)
	if !ok {
		return nil, fmt.Errorf("missing exponent")
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(nStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(eStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e <= 1 {
		return nil, fmt.Errorf("invalid exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}

func parseECJWK(jwk map[string]any) (*ecdsa.PublicKey, error) {
	crv, _ := jwk["crv"].(string)
	if crv != "P-256" {
		return nil, fmt.Errorf("unsupported curve: %q", crv)
	}

	xStr, ok := jwk["x"].(string)
	if !ok {
		return nil, fmt.Errorf("missing x coordinate")
	}
	yStr, ok := jwk["y"].(string)
	if !ok {
		return nil, fmt.Errorf("missing y coordinate")
	}

	xBytes, err := base64.RawURLEncoding.DecodeString(xStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode x: %w", err)
	}
	yBytes, err := base64.RawURLEncoding.DecodeString(yStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode y: %w", err)
	}

	return &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(xBytes),
		Y:     new(big.Int).SetBytes(yBytes),
	}, nil
}
