package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"townservice/town/registry"
	"townservice/town/service"
	"townservice/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.TownService
	towns   *registry.Store
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(townService service.TownService, towns *registry.Store, hub *websocket.Hub) *Server {
	s := &Server{
		service: townService,
		towns:   towns,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Town lifecycle
	api.HandleFunc("/towns", s.handleCreateTown).Methods("POST")
	api.HandleFunc("/towns", s.handleListTowns).Methods("GET")
	api.HandleFunc("/towns/{id}", s.handleUpdateTown).Methods("PATCH")
	api.HandleFunc("/towns/{id}", s.handleDeleteTown).Methods("DELETE")

	// Joining
	api.HandleFunc("/towns/{id}/join", s.handleJoinTown).Methods("POST")

	// Conversation areas
	api.HandleFunc("/towns/{id}/conversationAreas", s.handleCreateConversationArea).Methods("POST")
	api.HandleFunc("/towns/{id}/conversationAreas", s.handleListConversationAreas).Methods("GET")

	// Racing
	api.HandleFunc("/towns/{id}/racetrack", s.handleGetRaceTrack).Methods("GET")

	// Health check
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusForError maps service errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, registry.ErrTownNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrInvalidPassword),
		errors.Is(err, service.ErrInvalidSessionToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrDuplicateConversationArea):
		return http.StatusConflict
	case errors.Is(err, registry.ErrInvalidFriendlyName),
		errors.Is(err, service.ErrInvalidUserName),
		errors.Is(err, service.ErrInvalidConversationArea):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Town Handlers

func (s *Server) handleCreateTown(w http.ResponseWriter, r *http.Request) {
	var req service.TownCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	town, err := s.service.CreateTown(r.Context(), req)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, town)
}

func (s *Server) handleListTowns(w http.ResponseWriter, r *http.Request) {
	towns, err := s.service.ListTowns(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(towns),
		"towns": towns,
	})
}

func (s *Server) handleUpdateTown(w http.ResponseWriter, r *http.Request) {
	townID := mux.Vars(r)["id"]

	var req service.TownUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.UpdateTown(r.Context(), townID, req); err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Town updated"})
}

func (s *Server) handleDeleteTown(w http.ResponseWriter, r *http.Request) {
	townID := mux.Vars(r)["id"]

	var req struct {
		TownUpdatePassword string `json:"townUpdatePassword"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	if err := s.service.DeleteTown(r.Context(), townID, req.TownUpdatePassword); err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Town deleted"})
}

// Join Handler

func (s *Server) handleJoinTown(w http.ResponseWriter, r *http.Request) {
	townID := mux.Vars(r)["id"]

	var req service.TownJoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.JoinTown(r.Context(), townID, req)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Conversation Area Handlers

func (s *Server) handleCreateConversationArea(w http.ResponseWriter, r *http.Request) {
	townID := mux.Vars(r)["id"]

	var req service.ConversationAreaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.CreateConversationArea(r.Context(), townID, req); err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"message": "Conversation area created"})
}

func (s *Server) handleListConversationAreas(w http.ResponseWriter, r *http.Request) {
	townID := mux.Vars(r)["id"]

	areas, err := s.service.TownConversationAreas(r.Context(), townID)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"conversationAreas": areas,
	})
}

// Racing Handler

func (s *Server) handleGetRaceTrack(w http.ResponseWriter, r *http.Request) {
	townID := mux.Vars(r)["id"]

	raceTrack, err := s.service.TownRaceTrack(r.Context(), townID)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, raceTrack)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	townID := r.URL.Query().Get("town")
	sessionToken := r.URL.Query().Get("token")
	if townID == "" || sessionToken == "" {
		http.Error(w, "town and token parameters required", http.StatusBadRequest)
		return
	}

	town, err := s.towns.GetTown(townID)
	if err != nil {
		http.Error(w, "Invalid town", http.StatusNotFound)
		return
	}

	session := town.SessionByToken(sessionToken)
	if session == nil {
		http.Error(w, "Invalid session token", http.StatusUnauthorized)
		return
	}

	s.hub.ServeWS(w, r, town, session)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
