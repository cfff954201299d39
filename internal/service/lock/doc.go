// Package lock owns the door lock position and the feedback that goes with it.
//
// Grant opens the lock for one person, holds it for the dwell period and
// relocks. Lock is an idempotent "ensure locked" that never notifies anyone.
package lock
