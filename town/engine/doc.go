// Package engine implements the per-town session controller: players and
// their sessions, conversation-area membership, the racing minigame, and
// synchronous fan-out of state changes to registered town listeners.
//
// A TownController is the unit of shared mutable state. All mutations on one
// town are serialized by the controller's mutex; different towns are fully
// independent. Listener notification happens under the same exclusive scope
// as the mutation it reports, so observers never see half-updated state.
package engine
