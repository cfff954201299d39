// Package device declares the peripheral capabilities the door controller
// consumes: vision sensor, display, RGB indicator, piezo tone, lock servo,
// USB relay and gesture sensor.
//
// Drivers live outside this package. The sim subpackage provides a complete
// set that runs without hardware.
package device
