// Package schema holds the protocol message types exchanged with the
// radio: a versioned, opaque-on-the-wire binary codec vendored locally
// rather than imported from an external schema package.
//
// Every message type below implements MarshalVT/UnmarshalVT by hand,
// directly on top of google.golang.org/protobuf/encoding/protowire — the
// same low-level primitives a vtprotobuf-generated file would call into.
// Field numbers here are this package's own, not the upstream wire
// numbering; nothing outside this module round-trips against real
// firmware, so only internal self-consistency is required.
package schema
