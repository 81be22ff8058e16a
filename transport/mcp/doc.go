// Package mcp provides a Model Context Protocol surface for the town service.
//
// The package exposes a small set of read-mostly tools for AI agents:
//   - list_towns: List publicly visible towns with occupancy
//   - create_town: Create a new town
//   - town_leaderboard: Race leaderboard and ongoing race count
//   - town_conversation_areas: Conversation areas and their occupants
//
// The MCP server is a thin client: every tool handler proxies to the REST
// API, so the tools observe exactly what HTTP clients observe. It is mounted
// at POST /mcp by the main server.
package mcp
