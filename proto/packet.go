// Package proto defines the logical packet schema exchanged between
// routers and the shared data-model value types that travel inside
// those packets. Wire encoding is intentionally unspecified: packets
// are plain Go structs, not a byte framing.
package proto

import "github.com/google/uuid"

// NodeID is an opaque unique label for a router (e.g. "R1").
type NodeID string

// PrefixID is an opaque destination network identifier.
type PrefixID string

// OpCode identifies the packet variant, mirroring the 4-bit opcode
// field of the logical schema.
type OpCode uint8

const (
	OpHello  OpCode = 1
	OpUpdate OpCode = 2
	OpQuery  OpCode = 3
	OpReply  OpCode = 4
	OpAck    OpCode = 5
)

func (o OpCode) String() string {
	switch o {
	case OpHello:
		return "HELLO"
	case OpUpdate:
		return "UPDATE"
	case OpQuery:
		return "QUERY"
	case OpReply:
		return "REPLY"
	case OpAck:
		return "ACK"
	default:
		return "UNKNOWN"
	}
}

// ProtocolVersion is the fixed 4-bit version field of every packet.
const ProtocolVersion = 1

// Packet is the interface implemented by every logical packet variant.
// It never needs to be round-tripped through bytes in this engine, so
// the fields are simply exported and shaped per §6 of the spec.
type Packet interface {
	ID() uuid.UUID
	Op() OpCode
}

type header struct {
	id      uuid.UUID
	Version uint8 `json:"version"`
}

func (h header) ID() uuid.UUID { return h.id }

func newHeader() header {
	return header{id: uuid.New(), Version: ProtocolVersion}
}

// Hello carries the sender's link metrics so the receiver can learn or
// refresh a neighbor adjacency.
type Hello struct {
	header
	Source  NodeID
	Metrics LinkMetrics
}

func (Hello) Op() OpCode { return OpHello }

// NewHello constructs a Hello packet from the sender's id and metrics.
func NewHello(src NodeID, m LinkMetrics) Hello {
	return Hello{header: newHeader(), Source: src, Metrics: m}
}

// RouteEntry is a single advertised (prefix, cost) pair inside an
// Update packet, shaped after the TotalDelay/TotalJitter/... fields of
// §6's wire schema, collapsed to the values the protocol actually
// reasons about (composite reported cost) rather than re-deriving it
// from the four underlying component fields on every hop.
type RouteEntry struct {
	Prefix       PrefixID
	ReportedCost float64
}

// Update advertises one or more routes from Source.
type Update struct {
	header
	Source NodeID
	Routes []RouteEntry
}

func (Update) Op() OpCode { return OpUpdate }

// NewUpdate constructs an Update packet for a single route, matching
// §4.4.8's "single route entry" trigger_update contract.
func NewUpdate(src NodeID, prefix PrefixID, cost float64) Update {
	return Update{header: newHeader(), Source: src, Routes: []RouteEntry{{Prefix: prefix, ReportedCost: cost}}}
}

// Query, Reply and Ack are reserved for a full DUAL active-phase
// extension (§6, Open Questions). The baseline engine never emits
// them, but every component accepting a Packet must accept and ignore
// them without error.
type Query struct {
	header
	Dest             PrefixID
	FeasibleDistance float64
}

func (Query) Op() OpCode { return OpQuery }

type Reply struct {
	header
	Dest              PrefixID
	ReportedDistance  float64
	Reachable         bool
}

func (Reply) Op() OpCode { return OpReply }

type Ack struct {
	header
	SequenceNumber uint32
}

func (Ack) Op() OpCode { return OpAck }
