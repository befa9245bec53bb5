// Package jwks fetches and caches RSA signing keys published by an external
// identity provider, for verifying RS256 bearer tokens.
package jwks

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTTL = time.Hour

var ErrUnknownKey = errors.New("jwks: unknown key id")

type document struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// KeySet is a cached view of a JWKS endpoint. Keys are refetched after the
// TTL, or immediately when a token names an unknown kid.
type KeySet struct {
	url        string
	ttl        time.Duration
	httpClient *http.Client

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	fetched time.Time
}

// New returns a KeySet for the JWKS document at url. client may be nil.
func New(url string, client *http.Client) *KeySet {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &KeySet{url: url, ttl: defaultTTL, httpClient: client, keys: map[string]*rsa.PublicKey{}}
}

// Discover resolves the jwks_uri of an OpenID Connect issuer and returns a
// KeySet for it.
func Discover(ctx context.Context, issuer string, client *http.Client) (*KeySet, error) {
	ks := New("", client)
	var cfg struct {
		JWKSURI string `json:"jwks_uri"`
	}
	if err := ks.getJSON(ctx, strings.TrimRight(issuer, "/")+"/.well-known/openid-configuration", &cfg); err != nil {
		return nil, fmt.Errorf("jwks: discovery: %w", err)
	}
	if cfg.JWKSURI == "" {
		return nil, errors.New("jwks: discovery document has no jwks_uri")
	}
	ks.url = cfg.JWKSURI
	return ks, nil
}

// Keyfunc adapts the set to jwt.Parse. Only RSA-signed tokens are accepted.
func (k *KeySet) Keyfunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("jwks: unexpected signing method %v", token.Header["alg"])
		}
		kid, _ := token.Header["kid"].(string)
		return k.Key(ctx, kid)
	}
}

// Key returns the public key with the given kid.
func (k *KeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if k.stale() {
		if err := k.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	if key, ok := k.lookup(kid); ok {
		return key, nil
	}
	if err := k.Refresh(ctx); err != nil {
		return nil, err
	}
	if key, ok := k.lookup(kid); ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownKey, kid)
}

// Refresh refetches the key document.
func (k *KeySet) Refresh(ctx context.Context) error {
	var doc document
	if err := k.getJSON(ctx, k.url, &doc); err != nil {
		return fmt.Errorf("jwks: fetch keys: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, key := range doc.Keys {
		if key.Kty != "RSA" {
			continue
		}
		pub, err := rsaKeyFromJWK(key)
		if err != nil {
			continue
		}
		keys[key.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("jwks: no usable keys")
	}
	k.mu.Lock()
	k.keys = keys
	k.fetched = time.Now()
	k.mu.Unlock()
	return nil
}

func (k *KeySet) stale() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys) == 0 || time.Since(k.fetched) >= k.ttl
}

func (k *KeySet) lookup(kid string) (*rsa.PublicKey, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	key, ok := k.keys[kid]
	return key, ok
}

func (k *KeySet) getJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := k.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func rsaKeyFromJWK(j jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(j.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(j.E)
	if err != nil {
		return nil, err
	}
	e := 0
	for _, b := range eBytes {
		e = e<<8 + int(b)
	}
	if e == 0 {
		return nil, errors.New("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}
