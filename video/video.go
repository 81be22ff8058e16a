// Package video issues video-call access tokens for town rooms. The
// production implementation mints Twilio-style room access tokens; an
// insecure implementation backs local development when no credentials are
// configured.
package video

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// InsecureTokenProvider issues random opaque tokens that no video backend
// will accept. It exists so the server can run without Twilio credentials
// during development.
type InsecureTokenProvider struct{}

// NewInsecureTokenProvider creates a provider for local development.
func NewInsecureTokenProvider() *InsecureTokenProvider {
	return &InsecureTokenProvider{}
}

// GetTokenForTown returns a random token.
func (p *InsecureTokenProvider) GetTokenForTown(ctx context.Context, townID, playerID string) (string, error) {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes), nil
}
