// Package logger wraps zap for the door controller:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and runtime level changes,
//   - leveled shortcuts (Infof, WarnKV, ErrorKV, ...).
//
// Every controller receives a context and logs through the logger stored in
// it, so one device cycle can be followed across components by name.
package logger
