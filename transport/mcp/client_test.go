package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

// newStubAPI starts an HTTP server that answers REST paths with canned JSON.
func newStubAPI(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := responses[r.Method+" "+r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": "town not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	return text.Text
}

func TestHandleListTowns(t *testing.T) {
	t.Run("formats the town list", func(t *testing.T) {
		srv := newStubAPI(t, map[string]string{
			"GET /api/towns": `{"count": 1, "towns": [{"townID": "town-1", "friendlyName": "My Town", "currentOccupancy": 3, "maximumOccupancy": 50}]}`,
		})
		c := NewClient(srv.URL)

		result, err := c.handleListTowns(context.Background(), toolRequest(nil))
		if err != nil {
			t.Fatalf("handleListTowns failed: %v", err)
		}
		text := resultText(t, result)
		if !strings.Contains(text, "My Town") || !strings.Contains(text, "3/50") {
			t.Errorf("text = %q", text)
		}
	})

	t.Run("empty listing", func(t *testing.T) {
		srv := newStubAPI(t, map[string]string{
			"GET /api/towns": `{"count": 0, "towns": []}`,
		})
		c := NewClient(srv.URL)

		result, err := c.handleListTowns(context.Background(), toolRequest(nil))
		if err != nil {
			t.Fatalf("handleListTowns failed: %v", err)
		}
		if text := resultText(t, result); !strings.Contains(text, "No publicly listed towns") {
			t.Errorf("text = %q", text)
		}
	})
}

func TestHandleCreateTown(t *testing.T) {
	srv := newStubAPI(t, map[string]string{
		"POST /api/towns": `{"townID": "town-1", "townUpdatePassword": "secret"}`,
	})
	c := NewClient(srv.URL)

	result, err := c.handleCreateTown(context.Background(), toolRequest(map[string]interface{}{
		"friendly_name":   "My Town",
		"publicly_listed": true,
	}))
	if err != nil {
		t.Fatalf("handleCreateTown failed: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "town-1") || !strings.Contains(text, "secret") {
		t.Errorf("text = %q", text)
	}
}

func TestHandleTownLeaderboard(t *testing.T) {
	srv := newStubAPI(t, map[string]string{
		"GET /api/towns/town-1/racetrack": `{"scoreBoard": [{"userName": "alice", "time": 10000000000}], "ongoingRaces": [{"id": "p2", "startTime": "2026-08-28T10:00:00Z"}]}`,
	})
	c := NewClient(srv.URL)

	result, err := c.handleTownLeaderboard(context.Background(), toolRequest(map[string]interface{}{
		"town_id": "town-1",
	}))
	if err != nil {
		t.Fatalf("handleTownLeaderboard failed: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "alice") || !strings.Contains(text, "Ongoing races: 1") {
		t.Errorf("text = %q", text)
	}
}

func TestHandleTownConversationAreas(t *testing.T) {
	srv := newStubAPI(t, map[string]string{
		"GET /api/towns/town-1/conversationAreas": `{"conversationAreas": [{"label": "Racetrack Leaderboard", "topic": "View and discuss race times!", "boundingBox": {"x": 0, "y": 0, "width": 0, "height": 0}, "occupantsByID": ["p1"]}]}`,
	})
	c := NewClient(srv.URL)

	result, err := c.handleTownConversationAreas(context.Background(), toolRequest(map[string]interface{}{
		"town_id": "town-1",
	}))
	if err != nil {
		t.Fatalf("handleTownConversationAreas failed: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "Racetrack Leaderboard") || !strings.Contains(text, "1 occupant(s)") {
		t.Errorf("text = %q", text)
	}
}

func TestAPIErrorSurfacesAsToolError(t *testing.T) {
	srv := newStubAPI(t, nil)
	c := NewClient(srv.URL)

	result, err := c.handleTownLeaderboard(context.Background(), toolRequest(map[string]interface{}{
		"town_id": "no-such-town",
	}))
	if err != nil {
		t.Fatalf("handler returned transport error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected an error result")
	}
	if text := resultText(t, result); !strings.Contains(text, "town not found") {
		t.Errorf("text = %q", text)
	}
}
