package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"townservice/town/engine"
	"townservice/town/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// GetMCPServer returns the underlying MCP server for HTTP mounting.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Town Service",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Town Service - MCP Interface

This is a thin client that proxies all requests to the REST API server.

A town is one shared world with its own players, conversation areas, and a
racing minigame with a leaderboard.

AVAILABLE TOOLS:
- list_towns: List all publicly visible towns with occupancy
- create_town: Create a new town (returns the town ID and update password)
- town_leaderboard: Show a town's race leaderboard and ongoing races
- town_conversation_areas: Show a town's conversation areas and occupants`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_towns",
		Description: "List all publicly visible towns",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListTowns)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_town",
		Description: "Create a new town with a friendly name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"friendly_name": map[string]interface{}{
					"type":        "string",
					"description": "Human-readable town name",
				},
				"publicly_listed": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the town appears in public listings (default false)",
				},
			},
			Required: []string{"friendly_name"},
		},
	}, c.handleCreateTown)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "town_leaderboard",
		Description: "Get a town's race leaderboard and ongoing races",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"town_id": map[string]interface{}{
					"type":        "string",
					"description": "Town ID",
				},
			},
			Required: []string{"town_id"},
		},
	}, c.handleTownLeaderboard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "town_conversation_areas",
		Description: "Get a town's conversation areas and their occupants",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"town_id": map[string]interface{}{
					"type":        "string",
					"description": "Town ID",
				},
			},
			Required: []string{"town_id"},
		},
	}, c.handleTownConversationAreas)
}

// Tool handlers

func (c *Client) handleListTowns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Count int                   `json:"count"`
		Towns []service.TownSummary `json:"towns"`
	}
	if err := c.apiCall("GET", "/api/towns", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if resp.Count == 0 {
		return mcp.NewToolResultText("No publicly listed towns."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d town(s):\n", resp.Count)
	for _, town := range resp.Towns {
		fmt.Fprintf(&sb, "- %s (%s): %d/%d players\n",
			town.FriendlyName, town.TownID, town.CurrentOccupancy, town.MaximumOccupancy)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleCreateTown(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	friendlyName, _ := args["friendly_name"].(string)
	publiclyListed, _ := args["publicly_listed"].(bool)

	body := service.TownCreateRequest{
		FriendlyName:     friendlyName,
		IsPubliclyListed: publiclyListed,
	}

	var town service.TownCreateResponse
	if err := c.apiCall("POST", "/api/towns", body, &town); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created town: %s\nUpdate password: %s\n", town.TownID, town.TownUpdatePassword)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleTownLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	townID, _ := args["town_id"].(string)

	var raceTrack engine.RaceTrack
	if err := c.apiCall("GET", "/api/towns/"+townID+"/racetrack", nil, &raceTrack); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	sb.WriteString("Racetrack Leaderboard:\n")
	if len(raceTrack.ScoreBoard) == 0 {
		sb.WriteString("(no finished races yet)\n")
	}
	for i, result := range raceTrack.ScoreBoard {
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, result.UserName, result.Time)
	}
	fmt.Fprintf(&sb, "Ongoing races: %d\n", len(raceTrack.OngoingRaces))
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleTownConversationAreas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	townID, _ := args["town_id"].(string)

	var resp struct {
		ConversationAreas []*engine.ConversationArea `json:"conversationAreas"`
	}
	if err := c.apiCall("GET", "/api/towns/"+townID+"/conversationAreas", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d conversation area(s):\n", len(resp.ConversationAreas))
	for _, area := range resp.ConversationAreas {
		fmt.Fprintf(&sb, "- %s (%s): %d occupant(s)\n", area.Label, area.Topic, len(area.OccupantsByID))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// apiCall makes an HTTP request to the REST API
func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}
