package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ErrUnauthenticated is returned for missing, invalid, or rejected tokens.
var ErrUnauthenticated = errors.New("authentication failed")

// Authenticator resolves a bearer token to the owning user id.
type Authenticator interface {
	Authenticate(ctx context.Context, bearerToken string) (string, error)
}

type cacheEntry struct {
	userID    string
	expiresAt time.Time
}

// Provider validates bearer tokens against the identity provider's
// userinfo endpoint and exchanges user ids for Google access tokens. Token
// validations are cached process-wide, keyed by the raw token, so repeat
// requests inside the TTL skip the round trip.
type Provider struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	ttl        time.Duration
	now        func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

func NewProvider(baseURL, secretKey string, ttl time.Duration) *Provider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Provider{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]cacheEntry),
	}
}

// Authenticate resolves a raw bearer token to a user id, consulting the
// cache first. Expired entries are evicted on access.
func (p *Provider) Authenticate(ctx context.Context, bearerToken string) (string, error) {
	if bearerToken == "" {
		return "", ErrUnauthenticated
	}

	if userID, ok := p.cached(bearerToken); ok {
		return userID, nil
	}

	userID, err := p.fetchUser(ctx, bearerToken)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	p.cache[bearerToken] = cacheEntry{userID: userID, expiresAt: p.now().Add(p.ttl)}
	p.mu.Unlock()

	return userID, nil
}

func (p *Provider) cached(token string) (string, bool) {
	p.mu.RLock()
	entry, ok := p.cache[token]
	p.mu.RUnlock()
	if !ok {
		return "", false
	}
	if p.now().After(entry.expiresAt) {
		p.mu.Lock()
		delete(p.cache, token)
		p.mu.Unlock()
		return "", false
	}
	return entry.userID, true
}

func (p *Provider) fetchUser(ctx context.Context, bearerToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/oauth/userinfo", nil)
	if err != nil {
		return "", fmt.Errorf("creating userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: userinfo returned status %d", ErrUnauthenticated, resp.StatusCode)
	}

	var payload struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding userinfo: %w", err)
	}
	if payload.UserID == "" {
		return "", fmt.Errorf("%w: userinfo returned no user id", ErrUnauthenticated)
	}

	return payload.UserID, nil
}

// ProviderToken fetches a Google OAuth access token for the user through
// the identity provider's token-exchange endpoint.
func (p *Provider) ProviderToken(ctx context.Context, userID string) (string, error) {
	url := fmt.Sprintf("%s/v1/users/%s/oauth_access_tokens/oauth_google", p.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating token exchange request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("exchanging token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("token exchange returned status %d", resp.StatusCode)
	}

	var tokens []struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return "", fmt.Errorf("decoding token exchange response: %w", err)
	}
	if len(tokens) == 0 || tokens[0].Token == "" {
		return "", fmt.Errorf("no provider token on file for user %s", userID)
	}

	return tokens[0].Token, nil
}
