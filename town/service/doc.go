// Package service exposes town operations to transports as a single
// TownService interface: town lifecycle, joining, conversation-area
// creation, and read-only snapshots. Implementations wrap a registry.Store
// and translate between wire-level requests and controller calls.
package service
