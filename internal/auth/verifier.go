package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is the only error the verifier reports to callers.
// Every failure mode (malformed token, bad signature, expired, missing
// subject, unreachable key endpoint) collapses into it so the API never
// leaks which check failed; the concrete reason goes to the log.
var ErrUnauthorized = errors.New("unauthorized")

// jwksFetchTimeout bounds a single key-set request so a stalled identity
// provider cannot stall verification.
const jwksFetchTimeout = 10 * time.Second

// Verifier validates RS256 bearer tokens against the identity provider's
// JWKS endpoint. Keys are cached by kid and refetched once the cache is
// older than the configured TTL, or when a token references an unknown
// kid (key rotation). Construct one at startup and share it across
// request handlers.
type Verifier struct {
	jwksURL    string
	ttl        time.Duration
	httpClient *http.Client
	logger     *slog.Logger

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func NewVerifier(authBaseURL string, ttl time.Duration, logger *slog.Logger) *Verifier {
	return &Verifier{
		jwksURL:    authBaseURL + "/api/auth/jwks",
		ttl:        ttl,
		httpClient: &http.Client{Timeout: jwksFetchTimeout},
		logger:     logger,
	}
}

// Verify checks the token's signature and expiry and returns the subject
// claim. The returned error is always ErrUnauthorized.
func (v *Verifier) Verify(ctx context.Context, tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		return v.signingKey(ctx, kid)
	})
	if err != nil {
		v.logger.Warn("token verification failed", "error", err)
		return "", ErrUnauthorized
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", ErrUnauthorized
	}
	if claims.Subject == "" {
		v.logger.Warn("token has no subject claim")
		return "", ErrUnauthorized
	}
	return claims.Subject, nil
}

// signingKey resolves kid against the cached key set. The set is
// refetched only once it is older than the TTL; a kid that is absent
// from a fresh set fails outright, so forged tokens with random kids
// cannot drive one JWKS request per API call.
func (v *Verifier) signingKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if kid == "" {
		return nil, errors.New("token has no key id")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if time.Since(v.fetchedAt) >= v.ttl {
		if err := v.refreshLocked(ctx); err != nil {
			return nil, err
		}
	}

	key, ok := v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("no key with id %q in key set", kid)
	}
	return key, nil
}

// refreshLocked replaces the cached key set. The whole set is swapped at
// once so concurrent verifications never observe a partial update.
// Must be called with v.mu held.
func (v *Verifier) refreshLocked(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, jwksFetchTimeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return fmt.Errorf("creating JWKS request: %w", err)
	}

	response, err := v.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("fetching JWKS: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned HTTP %d", response.StatusCode)
	}

	var document struct {
		Keys []jsonWebKey `json:"keys"`
	}
	if err := json.NewDecoder(response.Body).Decode(&document); err != nil {
		return fmt.Errorf("decoding JWKS response: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(document.Keys))
	for _, jwk := range document.Keys {
		if jwk.Kty != "RSA" || jwk.Kid == "" {
			continue
		}
		key, err := jwk.publicKey()
		if err != nil {
			v.logger.Warn("skipping unparsable JWK", "kid", jwk.Kid, "error", err)
			continue
		}
		keys[jwk.Kid] = key
	}
	if len(keys) == 0 {
		return errors.New("JWKS response contained no usable RSA keys")
	}

	v.keys = keys
	v.fetchedAt = time.Now()
	v.logger.Debug("JWKS cache refreshed", "keys", len(keys))
	return nil
}

// jsonWebKey is the subset of RFC 7517 this service needs: RSA public
// keys addressable by kid.
type jsonWebKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (k jsonWebKey) publicKey() (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decoding modulus: %w", err)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decoding exponent: %w", err)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(new(big.Int).SetBytes(e).Int64()),
	}, nil
}
