package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const refreshTokenKeyPrefix = "refresh_token:"

// TokenStore holds refresh tokens in Redis so logout revokes them
// immediately instead of waiting for JWT expiry.
type TokenStore struct {
	cache *Client
}

// NewTokenStore creates a new token store.
func NewTokenStore(cache *Client) *TokenStore {
	return &TokenStore{cache: cache}
}

type refreshTokenData struct {
	UserID string `json:"user_id"`
}

// StoreRefreshToken stores a refresh token with a TTL.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, tokenID, userID string, ttl time.Duration) error {
	payload, err := json.Marshal(refreshTokenData{UserID: userID})
	if err != nil {
		return fmt.Errorf("failed to marshal token data: %w", err)
	}
	return s.cache.Set(ctx, refreshTokenKeyPrefix+tokenID, payload, ttl)
}

// GetRefreshToken returns the user id a refresh token was issued to.
func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenID string) (string, error) {
	data, err := s.cache.Get(ctx, refreshTokenKeyPrefix+tokenID)
	if err != nil {
		return "", err
	}
	if data == nil {
		return "", fmt.Errorf("refresh token not found")
	}
	var token refreshTokenData
	if err := json.Unmarshal(data, &token); err != nil {
		return "", fmt.Errorf("failed to unmarshal token data: %w", err)
	}
	return token.UserID, nil
}

// DeleteRefreshToken revokes a refresh token.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, refreshTokenKeyPrefix+tokenID)
}
