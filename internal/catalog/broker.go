// Package catalog resolves song metadata against the Spotify catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var (
	// ErrMissingCredentials is returned when the Spotify client id or secret is empty.
	ErrMissingCredentials = errors.New("missing Spotify client credentials")

	// ErrAuth is returned when the token endpoint rejects the credentials
	// or cannot be reached.
	ErrAuth = errors.New("catalog authentication failed")
)

// Broker obtains short-lived client-credentials tokens for the catalog API
// and caches them in process memory for their validity window. Tokens are
// never persisted.
type Broker struct {
	conf *clientcredentials.Config

	mu    sync.Mutex
	token *oauth2.Token
}

// NewBroker creates a Broker for the given client credentials.
// Returns ErrMissingCredentials if either value is empty.
func NewBroker(clientID, clientSecret string) (*Broker, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	return &Broker{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotifyauth.TokenURL,
		},
	}, nil
}

// Token returns a valid access token, fetching a new one when the cached
// token is missing or expired. Authentication failures are not retried.
func (b *Broker) Token(ctx context.Context) (*oauth2.Token, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.token.Valid() {
		return b.token, nil
	}

	token, err := b.conf.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuth, err)
	}

	b.token = token
	return token, nil
}

// Invalidate drops the cached token so the next Token call fetches a fresh one.
// Used after the catalog rejects a token that has not yet reached its expiry.
func (b *Broker) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = nil
}
