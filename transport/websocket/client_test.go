package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"townservice/town/engine"
	"townservice/town/registry"
)

type stubVideoProvider struct{}

func (stubVideoProvider) GetTokenForTown(ctx context.Context, townID, playerID string) (string, error) {
	return "video-token", nil
}

func newJoinedTown(t *testing.T) (*engine.TownController, *engine.PlayerSession) {
	t.Helper()
	store := registry.NewStore(stubVideoProvider{})
	town, err := store.CreateTown("WS Town", true)
	if err != nil {
		t.Fatalf("CreateTown failed: %v", err)
	}
	player := engine.NewPlayer("alice", engine.RegularGreen)
	session, err := town.AddPlayer(context.Background(), player)
	if err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}
	return town, session
}

func TestDispatch(t *testing.T) {
	town, session := newJoinedTown(t)
	client := newClient(NewHub(), nil, town, session)
	town.AddTownListener(client)
	player := session.Player()

	drain := func() []Message {
		var msgs []Message
		for {
			select {
			case data := <-client.send:
				var msg Message
				if err := json.Unmarshal(data, &msg); err != nil {
					t.Fatalf("bad outbound payload: %v", err)
				}
				msgs = append(msgs, msg)
			default:
				return msgs
			}
		}
	}

	t.Run("playerMovement", func(t *testing.T) {
		loc := engine.UserLocation{X: 5, Y: 6, Rotation: engine.Left, Moving: true}
		client.dispatch(Command{Action: ActionPlayerMovement, Location: loc})

		if player.Location != loc {
			t.Errorf("Location = %+v, want %+v", player.Location, loc)
		}
		msgs := drain()
		if len(msgs) != 1 || msgs[0].Event != EventPlayerMoved {
			t.Errorf("events = %+v", msgs)
		}
	})

	t.Run("enterCar and exitCar", func(t *testing.T) {
		client.dispatch(Command{Action: ActionEnterCar})
		if !player.IsDriving() {
			t.Error("player not driving")
		}
		client.dispatch(Command{Action: ActionExitCar})
		if player.IsDriving() {
			t.Error("player still driving")
		}
		msgs := drain()
		if len(msgs) != 2 || msgs[0].Event != EventPlayerEnteredCar || msgs[1].Event != EventPlayerExitedCar {
			t.Errorf("events = %+v", msgs)
		}
	})

	t.Run("startRace and finishRace", func(t *testing.T) {
		client.dispatch(Command{Action: ActionStartRace, Time: 50000})
		if !player.IsRacing() {
			t.Error("player not racing")
		}
		client.dispatch(Command{Action: ActionFinishRace, Time: 60000})
		if player.IsRacing() {
			t.Error("player still racing")
		}

		track := town.RaceTrack()
		want := engine.RaceResult{UserName: "alice", Time: 10 * time.Second}
		if len(track.ScoreBoard) != 1 || track.ScoreBoard[0] != want {
			t.Errorf("ScoreBoard = %+v", track.ScoreBoard)
		}
		msgs := drain()
		if len(msgs) != 2 || msgs[0].Event != EventRaceStarted || msgs[1].Event != EventRaceFinished {
			t.Errorf("events = %+v", msgs)
		}
	})

	t.Run("unknown action is ignored", func(t *testing.T) {
		client.dispatch(Command{Action: "teleport"})
		if msgs := drain(); len(msgs) != 0 {
			t.Errorf("events = %+v", msgs)
		}
	})
}

func TestEnqueueOverflow(t *testing.T) {
	town, session := newJoinedTown(t)
	client := newClient(NewHub(), nil, town, session)

	for i := 0; i < sendBufferSize; i++ {
		client.enqueue(EventPlayerMoved, nil)
	}
	select {
	case <-client.overflow:
		t.Fatal("overflow tripped before the buffer filled")
	default:
	}

	client.enqueue(EventPlayerMoved, nil)
	select {
	case <-client.overflow:
	default:
		t.Fatal("overflow not tripped on a full buffer")
	}

	// A second overflow must not re-close the channel.
	client.enqueue(EventPlayerMoved, nil)
}

func TestOnTownDestroyed(t *testing.T) {
	town, session := newJoinedTown(t)
	client := newClient(NewHub(), nil, town, session)

	client.OnTownDestroyed()

	if !client.townClosed.Load() {
		t.Error("townClosed not set")
	}
	select {
	case <-client.closing:
	default:
		t.Error("closing channel not closed")
	}

	data := <-client.send
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if msg.Event != EventTownClosing {
		t.Errorf("event = %s, want %s", msg.Event, EventTownClosing)
	}

	// Idempotent under repeated teardown.
	client.OnTownDestroyed()
}

func TestHubRegisterUnregister(t *testing.T) {
	town, session := newJoinedTown(t)
	hub := NewHub()
	client := newClient(hub, nil, town, session)

	hub.registerClient(client)
	if len(hub.towns[town.ID()]) != 1 {
		t.Fatalf("clients = %d, want 1", len(hub.towns[town.ID()]))
	}

	hub.unregisterClient(client)
	if _, ok := hub.towns[town.ID()]; ok {
		t.Error("empty town not cleaned up")
	}
	if _, ok := <-client.send; ok {
		t.Error("send channel not closed")
	}

	// Unregistering twice is a no-op.
	hub.unregisterClient(client)
}

// eventReader splits newline-batched frames back into individual events.
type eventReader struct {
	conn    *websocket.Conn
	pending [][]byte
}

func (r *eventReader) next(t *testing.T) (string, json.RawMessage) {
	t.Helper()
	if len(r.pending) == 0 {
		r.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage failed: %v", err)
		}
		r.pending = bytes.Split(data, []byte{'\n'})
	}

	var msg struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(r.pending[0], &msg); err != nil {
		t.Fatalf("bad event payload %q: %v", r.pending[0], err)
	}
	r.pending = r.pending[1:]
	return msg.Event, msg.Data
}

func TestServeWS(t *testing.T) {
	store := registry.NewStore(stubVideoProvider{})
	town, err := store.CreateTown("WS Town", true)
	if err != nil {
		t.Fatalf("CreateTown failed: %v", err)
	}
	player := engine.NewPlayer("alice", engine.RegularGreen)
	session, err := town.AddPlayer(context.Background(), player)
	if err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}

	hub := NewHub()
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, town, session)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	events := &eventReader{conn: conn}

	t.Run("movement round trip", func(t *testing.T) {
		cmd := Command{
			Action:   ActionPlayerMovement,
			Location: engine.UserLocation{X: 5, Y: 6, Rotation: engine.Right, Moving: true},
		}
		if err := conn.WriteJSON(cmd); err != nil {
			t.Fatalf("WriteJSON failed: %v", err)
		}

		event, data := events.next(t)
		if event != EventPlayerMoved {
			t.Fatalf("event = %s, want %s", event, EventPlayerMoved)
		}
		var moved struct {
			ID       string `json:"id"`
			Location struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"location"`
		}
		if err := json.Unmarshal(data, &moved); err != nil {
			t.Fatalf("bad player payload: %v", err)
		}
		if moved.ID != player.ID() || moved.Location.X != 5 || moved.Location.Y != 6 {
			t.Errorf("payload = %+v", moved)
		}
	})

	t.Run("race round trip", func(t *testing.T) {
		if err := conn.WriteJSON(Command{Action: ActionStartRace, Time: 50000}); err != nil {
			t.Fatalf("WriteJSON failed: %v", err)
		}
		if event, _ := events.next(t); event != EventRaceStarted {
			t.Fatalf("event = %s, want %s", event, EventRaceStarted)
		}

		if err := conn.WriteJSON(Command{Action: ActionFinishRace, Time: 60000}); err != nil {
			t.Fatalf("WriteJSON failed: %v", err)
		}
		if event, _ := events.next(t); event != EventRaceFinished {
			t.Fatalf("event = %s, want %s", event, EventRaceFinished)
		}

		track := town.RaceTrack()
		want := engine.RaceResult{UserName: "alice", Time: 10 * time.Second}
		if len(track.ScoreBoard) != 1 || track.ScoreBoard[0] != want {
			t.Errorf("ScoreBoard = %+v", track.ScoreBoard)
		}
	})

	t.Run("town teardown closes the stream", func(t *testing.T) {
		if err := store.DeleteTown(town.ID(), town.UpdatePassword()); err != nil {
			t.Fatalf("DeleteTown failed: %v", err)
		}

		event, _ := events.next(t)
		if event != EventTownClosing {
			t.Fatalf("event = %s, want %s", event, EventTownClosing)
		}

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
