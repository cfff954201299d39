// Package access contains the domain types of the door controller.
//
// Detection is one face observation from the vision sensor, Registry maps
// recognition identifiers to people, LockState is the door position and
// Snapshot is the read model published to the status service.
package access
