// Package status keeps the published device Snapshot in memory.
//
// The main loop writes through Update; the gRPC status service reads clones
// through Load. Nothing is written to disk: the device starts locked with a
// fresh snapshot after every restart.
package status
