package repositories

import (
	"encoding/json"
	"fmt"

	"github.com/desertthunder/tessera/internal/shared"
	"golang.org/x/oauth2"
)

const TokenKey = "spotify_token"

// TokenStore persists the Spotify OAuth2 token.
type TokenStore struct {
	store KVStore
}

func NewTokenStore(store KVStore) *TokenStore {
	return &TokenStore{store: store}
}

// Load returns the stored token or [shared.ErrNotAuthenticated].
func (s *TokenStore) Load() (*oauth2.Token, error) {
	raw, ok, err := s.store.Get(TokenKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrNotAuthenticated
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil || token.AccessToken == "" {
		return nil, fmt.Errorf("%w: stored token is unreadable", shared.ErrNotAuthenticated)
	}
	return &token, nil
}

func (s *TokenStore) Save(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidArgument)
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return s.store.Set(TokenKey, string(data))
}

func (s *TokenStore) Clear() error {
	return s.store.Remove(TokenKey)
}

// Invalidate drops the token after the API rejected it.
func (s *TokenStore) Invalidate() error {
	return s.Clear()
}
