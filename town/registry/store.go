// Package registry holds the process-wide mapping from town ID to its
// controller. A Store is constructed explicitly and injected wherever towns
// are looked up; it is never a package-level singleton, so controllers stay
// independently testable.
package registry

import (
	"errors"
	"sync"

	"townservice/town/engine"
)

var (
	ErrTownNotFound        = errors.New("town not found")
	ErrInvalidPassword     = errors.New("invalid town update password")
	ErrInvalidFriendlyName = errors.New("friendly name must not be empty")
)

// Store manages the lifecycle of town controllers: create, lookup, update,
// and delete. Operations across different towns never share the controllers'
// locks; the store's own mutex only guards the ID map.
type Store struct {
	mu    sync.RWMutex
	towns map[string]*engine.TownController
	video engine.VideoTokenProvider
}

// NewStore creates an empty town store. The video provider is handed to
// every controller the store creates.
func NewStore(video engine.VideoTokenProvider) *Store {
	return &Store{
		towns: make(map[string]*engine.TownController),
		video: video,
	}
}

// CreateTown creates a town controller and registers it under its fresh ID.
func (s *Store) CreateTown(friendlyName string, isPubliclyListed bool) (*engine.TownController, error) {
	if friendlyName == "" {
		return nil, ErrInvalidFriendlyName
	}

	town := engine.NewTownController(friendlyName, isPubliclyListed, s.video)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.towns[town.ID()] = town
	return town, nil
}

// GetTown resolves a town ID to its controller.
func (s *Store) GetTown(townID string) (*engine.TownController, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	town, exists := s.towns[townID]
	if !exists {
		return nil, ErrTownNotFound
	}
	return town, nil
}

// ListPublicTowns returns the controllers of all publicly listed towns.
func (s *Store) ListPublicTowns() []*engine.TownController {
	s.mu.RLock()
	defer s.mu.RUnlock()

	towns := make([]*engine.TownController, 0, len(s.towns))
	for _, town := range s.towns {
		if town.IsPubliclyListed() {
			towns = append(towns, town)
		}
	}
	return towns
}

// UpdateTown renames or relists a town. The caller must present the town's
// update password. A nil field leaves that attribute unchanged.
func (s *Store) UpdateTown(townID, password string, friendlyName *string, isPubliclyListed *bool) error {
	town, err := s.GetTown(townID)
	if err != nil {
		return err
	}
	if town.UpdatePassword() != password {
		return ErrInvalidPassword
	}

	if friendlyName != nil {
		if *friendlyName == "" {
			return ErrInvalidFriendlyName
		}
		town.SetFriendlyName(*friendlyName)
	}
	if isPubliclyListed != nil {
		town.SetPubliclyListed(*isPubliclyListed)
	}
	return nil
}

// DeleteTown tears a town down: all players are disconnected and the
// controller is removed from the store. The caller must present the town's
// update password.
func (s *Store) DeleteTown(townID, password string) error {
	town, err := s.GetTown(townID)
	if err != nil {
		return err
	}
	if town.UpdatePassword() != password {
		return ErrInvalidPassword
	}

	s.mu.Lock()
	delete(s.towns, townID)
	s.mu.Unlock()

	town.DisconnectAllPlayers()
	return nil
}
