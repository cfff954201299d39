// Package sim implements every device capability in software.
//
// Detections and gestures are scripted by a YAML scenario; outputs are
// logged and remembered so demos and tests can inspect what the controller
// commanded. Once the script is exhausted the room is empty and still.
package sim
