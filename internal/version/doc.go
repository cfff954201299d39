// Package version holds build metadata for door-guard.
//
// Version, Commit and BuildTime are injected with -ldflags at build time.
package version
