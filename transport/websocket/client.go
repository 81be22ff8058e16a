package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"townservice/town/engine"
)

// Outbound event names, one per town listener callback.
const (
	EventNewPlayer           = "newPlayer"
	EventPlayerMoved         = "playerMoved"
	EventPlayerDisconnect    = "playerDisconnect"
	EventTownClosing         = "townClosing"
	EventConversationUpdated = "conversationUpdated"
	EventPlayerEnteredCar    = "playerEnteredCar"
	EventPlayerExitedCar     = "playerExitedCar"
	EventRaceStarted         = "raceStarted"
	EventRaceFinished        = "raceFinished"
)

// Message is an outbound WebSocket event.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Command is an inbound client message. Time carries start/finish instants
// as milliseconds since the Unix epoch.
type Command struct {
	Action   string              `json:"action"`
	Location engine.UserLocation `json:"location,omitempty"`
	Time     int64               `json:"time,omitempty"`
}

// Inbound actions accepted from clients.
const (
	ActionPlayerMovement = "playerMovement"
	ActionEnterCar       = "enterCar"
	ActionExitCar        = "exitCar"
	ActionStartRace      = "startRace"
	ActionFinishRace     = "finishRace"
)

// Client is one WebSocket connection joined to a town. It implements
// engine.TownListener: controller callbacks enqueue serialized events on a
// buffered channel, never blocking the town; the write pump drains that
// channel onto the wire.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	town    *engine.TownController
	session *engine.PlayerSession

	send chan []byte

	// closed when the town shuts down; writePump flushes and disconnects
	closing   chan struct{}
	closeOnce sync.Once

	// closed when the send buffer overflows; writePump disconnects
	overflow     chan struct{}
	overflowOnce sync.Once

	townClosed atomic.Bool
}

func newClient(hub *Hub, conn *websocket.Conn, town *engine.TownController, session *engine.PlayerSession) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		town:     town,
		session:  session,
		send:     make(chan []byte, sendBufferSize),
		closing:  make(chan struct{}),
		overflow: make(chan struct{}),
	}
}

// enqueue serializes an event onto the client's send buffer. It runs under
// the town lock, so it must never block: a full buffer marks the client for
// disconnection instead.
func (c *Client) enqueue(event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", event, err)
		return
	}

	select {
	case c.send <- payload:
	default:
		c.overflowOnce.Do(func() { close(c.overflow) })
	}
}

// TownListener implementation.

func (c *Client) OnPlayerJoined(player *engine.Player) {
	c.enqueue(EventNewPlayer, player)
}

func (c *Client) OnPlayerMoved(player *engine.Player) {
	c.enqueue(EventPlayerMoved, player)
}

func (c *Client) OnPlayerDisconnected(player *engine.Player) {
	c.enqueue(EventPlayerDisconnect, player)
}

func (c *Client) OnTownDestroyed() {
	c.townClosed.Store(true)
	c.enqueue(EventTownClosing, nil)
	c.closeOnce.Do(func() { close(c.closing) })
}

func (c *Client) OnConversationAreaUpdated(area *engine.ConversationArea) {
	c.enqueue(EventConversationUpdated, area)
}

func (c *Client) OnPlayerEnteredCar(player *engine.Player) {
	c.enqueue(EventPlayerEnteredCar, player)
}

func (c *Client) OnPlayerExitedCar(player *engine.Player) {
	c.enqueue(EventPlayerExitedCar, player)
}

func (c *Client) OnRaceStarted(player *engine.Player) {
	c.enqueue(EventRaceStarted, player)
}

func (c *Client) OnRaceFinished(player *engine.Player) {
	c.enqueue(EventRaceFinished, player)
}

// readPump pumps inbound commands from the WebSocket connection into the
// town controller. When the connection drops, the client unsubscribes and
// destroys its session (unless the whole town is closing).
func (c *Client) readPump() {
	defer func() {
		c.town.RemoveTownListener(c)
		if !c.townClosed.Load() {
			c.town.DestroySession(c.session)
		}
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			log.Printf("Ignoring malformed client message: %v", err)
			continue
		}
		c.dispatch(cmd)
	}
}

// dispatch translates one inbound command into a controller call.
func (c *Client) dispatch(cmd Command) {
	player := c.session.Player()

	switch cmd.Action {
	case ActionPlayerMovement:
		c.town.UpdatePlayerLocation(player, cmd.Location)
	case ActionEnterCar:
		c.town.PlayerEnterCar(player)
	case ActionExitCar:
		c.town.PlayerExitCar(player)
	case ActionStartRace:
		c.town.PlayerStartRace(player, time.UnixMilli(cmd.Time))
	case ActionFinishRace:
		c.town.PlayerFinishRace(player, time.UnixMilli(cmd.Time))
	default:
		log.Printf("Ignoring unknown client action %q", cmd.Action)
	}
}

// writePump pumps events from the send buffer to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-c.closing:
			// Flush whatever is queued (including townClosing itself),
			// then drop the connection.
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			for {
				select {
				case message := <-c.send:
					if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
						return
					}
				default:
					c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
			}

		case <-c.overflow:
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
