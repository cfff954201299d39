// Package guard runs the door controller.
//
// Run loads settings, opens the peripherals, starts the optional status
// service and drives the main loop: one security cycle, one gesture relay
// cycle, then a fixed pause, until the context is cancelled or the lock
// reports an actuator fault.
package guard
