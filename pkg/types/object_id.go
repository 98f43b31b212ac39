package types

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/srand/beam/worker/pkg/utils"
)

// Transport used to move an object between workers.
type TransportType uint8

const (
	// The object is routed through the external object store.
	TransportRaylet TransportType = iota

	// The object flows inline through task messages and the memory store.
	TransportDirect
)

// Number of identity bytes in an object id, excluding the transport tag.
const ObjectIDSize = 16

// Unique identity of an object, tagged with the transport used to move it.
// The tag participates in equality and in the binary encoding.
type ObjectID struct {
	id        [ObjectIDSize]byte
	transport TransportType
}

// Create a random object id with the direct call transport.
func NewObjectID() ObjectID {
	return ObjectID{id: uuid.New(), transport: TransportDirect}
}

// Decode an object id from its binary form.
func ObjectIDFromBinary(data []byte) (ObjectID, error) {
	if len(data) != ObjectIDSize+1 {
		return ObjectID{}, utils.ErrBadRequest
	}
	var oid ObjectID
	copy(oid.id[:], data[:ObjectIDSize])
	oid.transport = TransportType(data[ObjectIDSize])
	return oid, nil
}

// The stable byte representation of the id, including the transport tag.
func (o ObjectID) Binary() []byte {
	data := make([]byte, ObjectIDSize+1)
	copy(data, o.id[:])
	data[ObjectIDSize] = byte(o.transport)
	return data
}

// Returns a copy of the id tagged with the given transport.
func (o ObjectID) WithTransportType(transport TransportType) ObjectID {
	o.transport = transport
	return o
}

func (o ObjectID) TransportType() TransportType {
	return o.transport
}

// Returns true if the object flows through direct worker calls.
func (o ObjectID) IsDirectCall() bool {
	return o.transport == TransportDirect
}

func (o ObjectID) IsNil() bool {
	return o == ObjectID{}
}

func (o ObjectID) String() string {
	return hex.EncodeToString(o.Binary())
}

// Derive the object id of the index:th return value of a task.
// Return indices start at 1.
func ForTaskReturn(task TaskID, index int) ObjectID {
	var oid ObjectID
	copy(oid.id[:], task[:ObjectIDSize-4])
	binary.BigEndian.PutUint32(oid.id[ObjectIDSize-4:], uint32(index))
	oid.transport = TransportDirect
	return oid
}
