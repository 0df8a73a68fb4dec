// Package types defines the wire-level data structures exchanged between
// embedded web applications and the bridge.
//
// Every inbound message carries a string discriminant ("type") and an
// application identifier. The discriminant is decoded once at the boundary
// into a closed Kind enumeration; unrecognized values map to KindUnknown and
// are answered with an "Invalid Action" response rather than dropped.
//
// Core Types:
//   - Kind: closed set of bridge operations
//   - Request: decoded inbound message with typed payload accessors
//   - Response: outbound message, always built through the codec
//   - LSAT: opaque Lightning Service Authentication Token record
//   - Person: host identity record for embedded apps
package types
