package video

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL bounds how long an issued room token stays valid.
const DefaultTokenTTL = 4 * time.Hour

var ErrMissingCredentials = errors.New("twilio credentials are not configured")

// TwilioVideo mints Twilio room access tokens. A Twilio access token is an
// HS256 JWT signed with the API key secret, carrying a video grant scoped to
// one room (the town) and one identity (the player).
type TwilioVideo struct {
	accountSID   string
	apiKeySID    string
	apiKeySecret string
	ttl          time.Duration
}

// NewTwilioVideo creates a token provider from Twilio API credentials.
func NewTwilioVideo(accountSID, apiKeySID, apiKeySecret string, ttl time.Duration) (*TwilioVideo, error) {
	if accountSID == "" || apiKeySID == "" || apiKeySecret == "" {
		return nil, ErrMissingCredentials
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TwilioVideo{
		accountSID:   accountSID,
		apiKeySID:    apiKeySID,
		apiKeySecret: apiKeySecret,
		ttl:          ttl,
	}, nil
}

// GetTokenForTown issues a room access token for the player, keyed by the
// town ID as the room name and the player ID as the identity.
func (tv *TwilioVideo) GetTokenForTown(ctx context.Context, townID, playerID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"jti": fmt.Sprintf("%s-%d", tv.apiKeySID, now.Unix()),
		"iss": tv.apiKeySID,
		"sub": tv.accountSID,
		"iat": now.Unix(),
		"exp": now.Add(tv.ttl).Unix(),
		"grants": map[string]interface{}{
			"identity": playerID,
			"video": map[string]interface{}{
				"room": townID,
			},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["cty"] = "twilio-fpa;v=1"

	signed, err := token.SignedString([]byte(tv.apiKeySecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign video token: %w", err)
	}
	return signed, nil
}
