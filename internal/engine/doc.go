// Package engine contains the simulation loop and the fish registry.
// This is the heartbeat of the aquarium.
//
// ARCHITECTURAL RULE: the Clock does NOT know about fish. It only moves
// simulated time forward and notifies listeners. The Engine subscribes and
// reconciles the Registry against the new time.
package engine
