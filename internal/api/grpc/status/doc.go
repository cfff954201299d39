// Package status exposes the device snapshot over gRPC.
//
// The service is declared by hand on top of protobuf well-known types, so no
// generated code is needed: GetStatus takes google.protobuf.Empty and returns
// a google.protobuf.Struct with one field per snapshot value.
package status
