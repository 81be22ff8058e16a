package websocket

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"townservice/town/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	// Outbound event buffer per client. A client that falls this far behind
	// is disconnected rather than allowed to block the town.
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Hub tracks the active clients of every town.
type Hub struct {
	// Registered clients by town ID
	towns map[string]map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		towns:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// ServeWS upgrades the request to a WebSocket connection bound to an
// already-resolved town session. The client subscribes itself to the town as
// a listener; town events flow out on the socket and inbound messages are
// translated to controller calls until the connection drops.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, town *engine.TownController, session *engine.PlayerSession) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := newClient(h, conn, town, session)
	h.register <- client
	town.AddTownListener(client)

	go client.writePump()
	go client.readPump()
}

// registerClient adds a client to its town.
func (h *Hub) registerClient(client *Client) {
	townID := client.town.ID()
	if h.towns[townID] == nil {
		h.towns[townID] = make(map[*Client]bool)
	}
	h.towns[townID][client] = true

	log.Printf("Client registered for town %s (total clients: %d)",
		townID, len(h.towns[townID]))
}

// unregisterClient removes a client from its town.
func (h *Hub) unregisterClient(client *Client) {
	townID := client.town.ID()
	if clients, ok := h.towns[townID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			// Clean up empty towns
			if len(clients) == 0 {
				delete(h.towns, townID)
			}

			log.Printf("Client unregistered from town %s (remaining clients: %d)",
				townID, len(clients))
		}
	}
}
