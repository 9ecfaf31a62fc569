package peercred

// DefaultPayloadSize is the expected handoff datagram length: the fixture
// sends exactly one zero byte, the pid travels as ancillary credentials.
const DefaultPayloadSize = 1
