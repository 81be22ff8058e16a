// Package api provides the HTTP REST surface of the town service.
//
// The api package implements:
//   - Town lifecycle endpoints (create, list, update, delete)
//   - Joining a town (returns session and video tokens)
//   - Conversation area creation and listing
//   - Race leaderboard retrieval
//   - WebSocket upgrade handling for joined players
//
// Endpoints:
//
// Town lifecycle:
//   - POST /api/towns - Create a town
//   - GET /api/towns - List publicly visible towns
//   - PATCH /api/towns/{id} - Update a town (requires update password)
//   - DELETE /api/towns/{id} - Delete a town (requires update password)
//
// Town state:
//   - POST /api/towns/{id}/join - Join a town as a named player
//   - POST /api/towns/{id}/conversationAreas - Create a conversation area
//   - GET /api/towns/{id}/conversationAreas - List conversation areas
//   - GET /api/towns/{id}/racetrack - Race leaderboard and ongoing races
//
// WebSocket:
//   - GET /ws?town=<town_id>&token=<session_token> - Live event stream
//
// All endpoints accept and return JSON. Errors are returned as
// {"error": "<message>"} with a status code reflecting the failure.
package api
