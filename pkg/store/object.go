package store

import (
	"github.com/srand/beam/worker/pkg/protocol"
)

// An immutable value held by the memory store.
// Objects are shared between readers once published and must not be mutated.
type Object struct {
	data     []byte
	metadata []byte
}

// Create a new object. The payload is copied when copyData is set, so that
// the object owns a stable snapshot regardless of what the caller does with
// its buffers afterwards.
func NewObject(data, metadata []byte, copyData bool) *Object {
	if copyData {
		data = append([]byte(nil), data...)
		metadata = append([]byte(nil), metadata...)
	}
	return &Object{data: data, metadata: metadata}
}

func (o *Object) HasData() bool {
	return len(o.data) > 0
}

func (o *Object) HasMetadata() bool {
	return len(o.metadata) > 0
}

func (o *Object) Data() []byte {
	return o.data
}

func (o *Object) Metadata() []byte {
	return o.metadata
}

func (o *Object) Size() int64 {
	return int64(len(o.data) + len(o.metadata))
}

// Returns true if the object is a marker for a value that lives in the
// external object store. The real payload must be fetched from there.
func (o *Object) IsInPlasmaError() bool {
	return protocol.IsInPlasmaMetadata(o.metadata)
}
