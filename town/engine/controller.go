package engine

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is the maximum number of concurrent sessions in a town.
const DefaultCapacity = 50

var (
	ErrTownFull = errors.New("town is at capacity")
)

// TownController is the authoritative state holder for one town: its
// players, sessions, conversation areas, race track, and listeners. All
// mutations are serialized by a single mutex; listener fan-out runs under
// the same critical section as the mutation it reports.
type TownController struct {
	id             string
	updatePassword string
	capacity       int
	video          VideoTokenProvider

	mu                sync.Mutex
	friendlyName      string
	isPubliclyListed  bool
	players           []*Player
	sessions          []*PlayerSession
	listeners         []TownListener
	conversationAreas []*ConversationArea
	raceTrack         *RaceTrack
}

// NewTownController creates a town with a fresh ID and update password. Every
// town is seeded with the reserved Racetrack Leaderboard conversation area.
func NewTownController(friendlyName string, isPubliclyListed bool, video VideoTokenProvider) *TownController {
	return &TownController{
		id:                uuid.NewString(),
		updatePassword:    generateUpdatePassword(),
		capacity:          DefaultCapacity,
		video:             video,
		friendlyName:      friendlyName,
		isPubliclyListed:  isPubliclyListed,
		conversationAreas: []*ConversationArea{newRacetrackLeaderboardArea()},
		raceTrack:         newRaceTrack(),
	}
}

// ID returns the town's unique identifier.
func (tc *TownController) ID() string { return tc.id }

// UpdatePassword returns the secret required to update or delete the town.
func (tc *TownController) UpdatePassword() string { return tc.updatePassword }

// Capacity returns the maximum number of concurrent sessions.
func (tc *TownController) Capacity() int { return tc.capacity }

// FriendlyName returns the town's human-readable name.
func (tc *TownController) FriendlyName() string {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.friendlyName
}

// SetFriendlyName renames the town.
func (tc *TownController) SetFriendlyName(name string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.friendlyName = name
}

// IsPubliclyListed reports whether the town appears in public listings.
func (tc *TownController) IsPubliclyListed() bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.isPubliclyListed
}

// SetPubliclyListed toggles the town's visibility in public listings.
func (tc *TownController) SetPubliclyListed(listed bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.isPubliclyListed = listed
}

// Occupancy returns the number of live sessions.
func (tc *TownController) Occupancy() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return len(tc.sessions)
}

// Players returns value snapshots of the town's players, taken under the
// town lock so they are safe to serialize after it is released.
func (tc *TownController) Players() []PlayerView {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	players := make([]PlayerView, len(tc.players))
	for i, player := range tc.players {
		players[i] = player.View()
	}
	return players
}

// ConversationAreas returns a snapshot of the town's conversation areas in
// creation order. The reserved leaderboard area is always first.
func (tc *TownController) ConversationAreas() []*ConversationArea {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	areas := make([]*ConversationArea, len(tc.conversationAreas))
	for i, area := range tc.conversationAreas {
		areas[i] = area.copy()
	}
	return areas
}

// RaceTrack returns a snapshot of the town's race track.
func (tc *TownController) RaceTrack() RaceTrack {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.raceTrack.copy()
}

// SessionByToken resolves a session token to its live session, or nil.
func (tc *TownController) SessionByToken(token string) *PlayerSession {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	for _, session := range tc.sessions {
		if session.sessionToken == token {
			return session
		}
	}
	return nil
}

// AddPlayer registers the player, requests a video token for them, creates a
// session with a fresh token, and notifies listeners. The video request runs
// before the critical section; if it fails the join aborts with nothing
// registered.
func (tc *TownController) AddPlayer(ctx context.Context, player *Player) (*PlayerSession, error) {
	videoToken, err := tc.video.GetTokenForTown(ctx, tc.id, player.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to obtain video token: %w", err)
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	if len(tc.sessions) >= tc.capacity {
		return nil, ErrTownFull
	}

	session := newPlayerSession(player, videoToken)
	tc.players = append(tc.players, player)
	tc.sessions = append(tc.sessions, session)

	for _, listener := range tc.listeners {
		listener.OnPlayerJoined(player)
	}
	return session, nil
}

// DestroySession removes the session and its player from the town and
// notifies listeners. If the player occupied a conversation area, the area's
// occupant list is updated and broadcast as well.
func (tc *TownController) DestroySession(session *PlayerSession) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	player := session.Player()
	for i, s := range tc.sessions {
		if s.sessionToken == session.sessionToken {
			tc.sessions = append(tc.sessions[:i], tc.sessions[i+1:]...)
			break
		}
	}
	for i, p := range tc.players {
		if p.ID() == player.ID() {
			tc.players = append(tc.players[:i], tc.players[i+1:]...)
			break
		}
	}

	if area := player.activeConversationArea; area != nil {
		area.removeOccupant(player.ID())
		player.activeConversationArea = nil
		for _, listener := range tc.listeners {
			listener.OnConversationAreaUpdated(area)
		}
	}

	for _, listener := range tc.listeners {
		listener.OnPlayerDisconnected(player)
	}
}

// DisconnectAllPlayers notifies every listener that the town is being torn
// down, then clears all players and sessions.
func (tc *TownController) DisconnectAllPlayers() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	for _, listener := range tc.listeners {
		listener.OnTownDestroyed()
	}

	for _, area := range tc.conversationAreas {
		area.OccupantsByID = []string{}
	}
	for _, player := range tc.players {
		player.activeConversationArea = nil
	}
	tc.players = nil
	tc.sessions = nil
}

// AddTownListener registers a listener for this town's events.
func (tc *TownController) AddTownListener(listener TownListener) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.listeners = append(tc.listeners, listener)
}

// RemoveTownListener unregisters a listener. Removal is by identity, not by
// value; an unknown listener is ignored.
func (tc *TownController) RemoveTownListener(listener TownListener) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	for i, l := range tc.listeners {
		if l == listener {
			tc.listeners = append(tc.listeners[:i], tc.listeners[i+1:]...)
			return
		}
	}
}

// UpdatePlayerLocation records the player's new location, re-derives their
// conversation-area membership, and notifies listeners.
//
// A conversation label reported by the client wins over geometry, even when
// the coordinates fall outside that area's box. Without a label, membership
// is the first area whose box strictly contains the point. Membership
// changes update both the old and new areas' occupant lists and broadcast an
// update for each; OnPlayerMoved fires on every call.
func (tc *TownController) UpdatePlayerLocation(player *Player, location UserLocation) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	player.Location = location

	var current *ConversationArea
	if location.ConversationLabel != "" {
		current = tc.conversationAreaByLabel(location.ConversationLabel)
	}
	if current == nil {
		for _, area := range tc.conversationAreas {
			if player.IsWithin(area) {
				current = area
				break
			}
		}
	}

	if previous := player.activeConversationArea; previous != current {
		if previous != nil {
			previous.removeOccupant(player.ID())
			for _, listener := range tc.listeners {
				listener.OnConversationAreaUpdated(previous)
			}
		}
		if current != nil {
			current.addOccupant(player.ID())
			for _, listener := range tc.listeners {
				listener.OnConversationAreaUpdated(current)
			}
		}
		player.activeConversationArea = current
	}

	for _, listener := range tc.listeners {
		listener.OnPlayerMoved(player)
	}
}

// AddConversationArea adds the area to the town. It reports false if an area
// with the same label already exists; the caller decides what to do with the
// rejection. New areas start with an empty occupant list.
func (tc *TownController) AddConversationArea(area *ConversationArea) bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.conversationAreaByLabel(area.Label) != nil {
		return false
	}
	area.OccupantsByID = []string{}
	tc.conversationAreas = append(tc.conversationAreas, area)

	for _, listener := range tc.listeners {
		listener.OnConversationAreaUpdated(area)
	}
	return true
}

// PlayerEnterCar marks the player's current car active and notifies listeners.
func (tc *TownController) PlayerEnterCar(player *Player) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	player.SetDriving(true)
	for _, listener := range tc.listeners {
		listener.OnPlayerEnteredCar(player)
	}
}

// PlayerExitCar parks the player's current car and notifies listeners.
func (tc *TownController) PlayerExitCar(player *Player) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	player.SetDriving(false)
	for _, listener := range tc.listeners {
		listener.OnPlayerExitedCar(player)
	}
}

// PlayerStartRace switches the player onto their race car, records the race
// start (replacing any stale entry for the same player), and notifies
// listeners.
func (tc *TownController) PlayerStartRace(player *Player, startTime time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	player.SetRacing(true)
	tc.raceTrack.start(player.ID(), startTime)
	for _, listener := range tc.listeners {
		listener.OnRaceStarted(player)
	}
}

// PlayerFinishRace completes the player's ongoing race: the entry is removed,
// the elapsed time lands on the scoreboard, and the player returns to their
// regular car. A finish with no matching ongoing race changes no state, but
// listeners are still notified of the attempt.
func (tc *TownController) PlayerFinishRace(player *Player, finishTime time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if _, ok := tc.raceTrack.finish(player, finishTime); ok {
		player.SetRacing(false)
	}
	for _, listener := range tc.listeners {
		listener.OnRaceFinished(player)
	}
}

// conversationAreaByLabel returns the area with the given label, or nil.
// Callers hold the town lock.
func (tc *TownController) conversationAreaByLabel(label string) *ConversationArea {
	for _, area := range tc.conversationAreas {
		if area.Label == label {
			return area
		}
	}
	return nil
}

// generateUpdatePassword returns a random 48-character hex secret.
func generateUpdatePassword() string {
	bytes := make([]byte, 24)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
