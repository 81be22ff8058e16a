package engine

import (
	"crypto/rand"
	"encoding/hex"
)

// PlayerSession binds a player to one connection's lifetime. The session
// token is an opaque secret the client presents to the transport layer; the
// video token is issued by the external video collaborator at join time.
type PlayerSession struct {
	sessionToken string
	player       *Player
	videoToken   string
}

func newPlayerSession(player *Player, videoToken string) *PlayerSession {
	return &PlayerSession{
		sessionToken: generateSessionToken(),
		player:       player,
		videoToken:   videoToken,
	}
}

// SessionToken returns the session's opaque unique token.
func (s *PlayerSession) SessionToken() string { return s.sessionToken }

// Player returns the player bound to this session.
func (s *PlayerSession) Player() *Player { return s.player }

// VideoToken returns the video-call token issued for this session.
func (s *PlayerSession) VideoToken() string { return s.videoToken }

// generateSessionToken returns a random 32-character hex token.
func generateSessionToken() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
